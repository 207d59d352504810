package protocol

// Update protocol vocabulary.
const (
	// UpdateSymbol is the decision symbol that enters update mode.
	// Any other symbol at the boot prompt requests a normal boot.
	UpdateSymbol = 'u'

	// UpdateSymbolUpper is the uppercase alias of UpdateSymbol.
	UpdateSymbolUpper = 'U'

	// CommandSend is the literal command token that starts an image
	// transfer. It is matched byte-by-byte; the first mismatched byte
	// aborts the session.
	CommandSend = "SEND "

	// FieldSeparator separates the decimal size from the optional
	// expected CRC-32 on the size line.
	FieldSeparator = ' '
)

// Legacy status literals. Each is emitted as its own line terminated with
// '\n'; the serial layer normalizes line endings for terminals. The exact
// text is load-bearing: existing host tooling pattern-matches on it.
const (
	LitBootPrompt = "BOOT?"
	LitUpdateAck  = "OK"
	LitErasing    = "ERASING..."
	LitReady      = "READY"
	LitCRCPrompt  = "CRC?"
	LitCRCPass    = "OK"
	LitReboot     = "REBOOT"
	LitJumping    = "Jumping to application..."
	LitHandoff    = "APP_HANDOFF"
	LitRecovery   = "Recovery Loop: No valid app found. Press 'u' to update."

	LitErrCommand = "ERR: CMD"
	LitErrSize    = "ERR: SIZE"
	LitErrErase   = "ERR: ERASE"
	LitErrHeader  = "ERR: HEADER"
	LitErrCRC     = "ERR: CRC"

	LitErrBadMagic = "Error: Invalid magic number"
	LitErrBadSize  = "Error: Invalid firmware size"
	LitErrBadCRC   = "Error: CRC mismatch"
)

// Machine-parsable status line prefixes. During the literal-to-token
// migration both forms are emitted: the legacy literal line first, then the
// PREFIX:TOKEN[:VALUE] line.
const (
	// PrefixBoot prefixes bootloader-side status tokens.
	PrefixBoot = "BL"

	// PrefixApp prefixes application-side status tokens.
	PrefixApp = "APP"
)

// Bootloader status tokens.
const (
	TokBootPrompt = "BOOT?"
	TokUpdate     = "UPDATE"
	TokErase      = "ERASE"
	TokRecv       = "RECV"
	TokCRC        = "CRC"
	TokReboot     = "REBOOT"
	TokHandoff    = "HANDOFF"
	TokRecovery   = "RECOVERY"
	TokErr        = "ERR"
)

// Error token values carried after TokErr.
const (
	ErrTokCommand = "CMD"
	ErrTokSize    = "SIZE"
	ErrTokErase   = "ERASE"
	ErrTokHeader  = "HEADER"
	ErrTokMagic   = "MAGIC"
	ErrTokCRC     = "CRC"
)

// CRC token values.
const (
	CRCTokOK   = "OK"
	CRCTokFail = "FAIL"
)

// Application status tokens.
const (
	TokAppStart  = "START"
	TokAppOnline = "ONLINE"
)
