package protocol

import "io"

// StatusWriter emits protocol status lines on the serial stream.
//
// Every status is written twice during the migration period: the legacy
// human-readable literal first, then the machine-parsable
// PREFIX:TOKEN[:VALUE] line. Host tooling that predates the token lines
// keeps matching the legacy text unchanged; new tooling parses the tokens.
type StatusWriter struct {
	w      io.Writer
	prefix string
}

// NewStatusWriter returns a StatusWriter emitting lines with the given
// prefix (PrefixBoot on the bootloader side, PrefixApp inside the demo
// application).
func NewStatusWriter(w io.Writer, prefix string) *StatusWriter {
	return &StatusWriter{w: w, prefix: prefix}
}

// Line writes a raw line followed by '\n'. Used for banner and other
// free-form output that has no token form.
func (s *StatusWriter) Line(text string) error {
	_, err := io.WriteString(s.w, text+"\n")
	return err
}

// Status writes the legacy literal line followed by its token line.
// Value may be empty, in which case the token line is PREFIX:TOKEN.
func (s *StatusWriter) Status(legacy, token, value string) error {
	if err := s.Line(legacy); err != nil {
		return err
	}
	line := s.prefix + ":" + token
	if value != "" {
		line += ":" + value
	}
	return s.Line(line)
}

// Token writes only the token line, for statuses that never had a legacy
// literal form.
func (s *StatusWriter) Token(token, value string) error {
	line := s.prefix + ":" + token
	if value != "" {
		line += ":" + value
	}
	return s.Line(line)
}
