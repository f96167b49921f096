/*
Package desfire provides a host-side client for the MIFARE DESFire EV1
contactless smart-card family: cryptographic primitives, key material,
the three-pass mutual-authentication and secure-messaging channel, and
the EV1 command surface built on top of it.

# Access Rights Encoding

The 16-bit access rights value returned by GetFileSettings is organized
(MSB→LSB) as:

	[Read | Write | ReadWrite | ChangeAccessRights]
	bits 15-12: Read key
	bits 11-8:  Write key
	bits 7-4:   ReadWrite key
	bits 3-0:   ChangeAccessRights key

Nibble values:

	0x0-0xD = key slot number (authenticate with that key to perform operation)
	0xE     = free (no authentication needed)
	0xF     = denied (operation never permitted)

A file's actual communication mode for a given operation depends on
both its configured CommMode and its access rights: a Read=free file is
served in plain regardless of how ReadData is called.

# Three-Pass Authentication (INS 0x0A / 0x1A / 0xAA, then 0xAF)

Phase 1:

	Command:  <AUTH> <keyNo>
	Response: <EncRndB> | status=0xAF

Phase 2:

	Decrypt RndB, draw RndA, send Enc(RndA || RotateLeft(RndB))
	Command:  0xAF <Enc(RndA||RndB')>
	Response: <Enc(RotateLeft(RndA))> | status=0x00

Session key bytes are assembled from RndA/RndB per key type (see
deriveSessionKeyBytes); the low bit of every byte is cleared for
DES/3DES session keys, never for AES.

Fail states:

	status=0xAE  Wrong key for the slot, or protocol desync
	status=0x7E  Bad command format

RndA verification failure (rotated value returned by the card does not
match what was sent) means a key mismatch; Authenticate returns
*AuthenticationError and the session reverts to unauthenticated.

# Communication Modes

Four modes select the secure-channel treatment for a single command
(CommMode):

	Plain:          No security. Running IV/CMAC still advances if a
	                session is active, but no tag is placed on the wire.
	MACed:          Response carries an 8-byte truncated CMAC tag over
	                the response data and status byte.
	Enciphered:     Request/response data is CRC-checked then CBC
	                encrypted/decrypted under the session key.
	Plain-with-MAC: Legacy framing: a 4-byte tag is appended to the
	                outgoing request as well as the response.

# Secure Messaging Failure Modes

	*IntegrityError       CMAC or CRC mismatch. The session is
	                      unconditionally cleared: host and card running
	                      IVs may have diverged and no further command on
	                      this session can be trusted.
	*AuthenticationError  Three-pass exchange did not verify.
	*ProtocolError        A well-formed, non-OK status code from the
	                      card (e.g. PERMISSION_DENIED); the session
	                      itself remains valid.
	*TransportError       The underlying Card failed to deliver an APDU;
	                      session integrity is indeterminate and the
	                      session must be discarded by the caller.
*/
package desfire
