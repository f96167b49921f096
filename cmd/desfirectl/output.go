package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nfc-tools/desfire-go/pkg/desfire"
)

var (
	colorLabel = text.Colors{text.FgYellow}
	colorValue = text.Colors{text.FgWhite}
)

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	style := table.StyleRounded
	style.Color.Header = text.Colors{text.FgCyan, text.Bold}
	style.Options.SeparateRows = false
	t.SetStyle(style)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func printApplicationIDs(ids []desfire.ApplicationID) {
	t := newTable("APPLICATIONS")
	t.AppendHeader(table.Row{"AID"})
	for _, id := range ids {
		t.AppendRow(table.Row{id.String()})
	}
	t.Render()
}

func printFileIDs(ids []byte) {
	t := newTable("FILE IDS")
	t.AppendHeader(table.Row{"File"})
	for _, id := range ids {
		t.AppendRow(table.Row{fmt.Sprintf("%d", id)})
	}
	t.Render()
}

func printFileSettings(fileID byte, fs *desfire.FileSettings) {
	t := newTable(fmt.Sprintf("FILE %d SETTINGS", fileID))
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 30},
	})
	t.AppendRow(table.Row{"Type", fileTypeName(fs.FileType)})
	t.AppendRow(table.Row{"Comm Mode", fs.CommMode.String()})
	t.AppendRow(table.Row{"Access Rights", fmt.Sprintf("%04X", fs.AccessRights)})

	switch fs.FileType {
	case desfire.FileTypeStandardData, desfire.FileTypeBackupData:
		t.AppendRow(table.Row{"File Size", fs.FileSize})
	case desfire.FileTypeValue:
		t.AppendRow(table.Row{"Lower Limit", fs.LowerLimit})
		t.AppendRow(table.Row{"Upper Limit", fs.UpperLimit})
		t.AppendRow(table.Row{"Limited Credit Value", fs.LimitedCreditValue})
		t.AppendRow(table.Row{"Limited Credit Enabled", fs.LimitedCreditEnabled})
	case desfire.FileTypeLinearRecord, desfire.FileTypeCyclicRecord:
		t.AppendRow(table.Row{"Record Size", fs.RecordSize})
		t.AppendRow(table.Row{"Max Records", fs.MaxNumberOfRecords})
		t.AppendRow(table.Row{"Current Records", fs.CurrentNumberOfRecords})
	}
	t.Render()
}

func fileTypeName(ft desfire.FileType) string {
	switch ft {
	case desfire.FileTypeStandardData:
		return "Standard Data"
	case desfire.FileTypeBackupData:
		return "Backup Data"
	case desfire.FileTypeValue:
		return "Value"
	case desfire.FileTypeLinearRecord:
		return "Linear Record"
	case desfire.FileTypeCyclicRecord:
		return "Cyclic Record"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", byte(ft))
	}
}

func printCardVersion(v *desfire.CardVersion) {
	t := newTable("CARD VERSION")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 30},
	})
	t.AppendRow(table.Row{"HW Vendor/Type/Subtype", fmt.Sprintf("%02X/%02X/%02X", v.HWVendorID, v.HWType, v.HWSubType)})
	t.AppendRow(table.Row{"HW Version", fmt.Sprintf("%d.%d", v.HWMajorVer, v.HWMinorVer)})
	t.AppendRow(table.Row{"HW Storage/Protocol", fmt.Sprintf("%02X/%02X", v.HWStorageSize, v.HWProtocol)})
	t.AppendRow(table.Row{"SW Vendor/Type/Subtype", fmt.Sprintf("%02X/%02X/%02X", v.SWVendorID, v.SWType, v.SWSubType)})
	t.AppendRow(table.Row{"SW Version", fmt.Sprintf("%d.%d", v.SWMajorVer, v.SWMinorVer)})
	t.AppendRow(table.Row{"SW Storage/Protocol", fmt.Sprintf("%02X/%02X", v.SWStorageSize, v.SWProtocol)})
	t.AppendRow(table.Row{"UID", fmt.Sprintf("%X", v.UID[:])})
	t.AppendRow(table.Row{"Batch No", fmt.Sprintf("%X", v.BatchNo[:])})
	t.AppendRow(table.Row{"Fab Key", fmt.Sprintf("%02X", v.FabKey)})
	t.AppendRow(table.Row{"Production Year/Week", fmt.Sprintf("%d / %d", v.ProdYear, v.ProdWeek)})
	t.Render()
}

func printKeySettings(ks desfire.KeySettings, countAndType byte) {
	t := newTable("KEY SETTINGS")
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: colorLabel, WidthMin: 20},
		{Number: 2, Colors: colorValue, WidthMin: 30},
	})
	t.AppendRow(table.Row{"Settings Byte", fmt.Sprintf("%02X", byte(ks))})
	t.AppendRow(table.Row{"Key Count", countAndType & 0x0F})
	t.AppendRow(table.Row{"Key Type Nibble", fmt.Sprintf("%02X", countAndType&0xF0)})
	t.Render()
}
