package downgrade

import (
	"bytes"
	"fmt"
	"os"
)

// stampFile sets the $ACADVER header variable of the DXF file at path.
func stampFile(path, code string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("stamp version: %w", err)
	}
	if err := os.WriteFile(path, stampVersion(data, code), 0644); err != nil {
		return fmt.Errorf("stamp version: %w", err)
	}
	return nil
}

// stampVersion returns data with the value of $ACADVER replaced by code.
// Files without the variable get a HEADER section holding it.
func stampVersion(data []byte, code string) []byte {
	eol := []byte("\n")
	if bytes.Contains(data, []byte("\r\n")) {
		eol = []byte("\r\n")
	}
	lines := bytes.Split(data, []byte("\n"))

	for i := 1; i+2 < len(lines); i++ {
		if string(bytes.TrimSpace(lines[i])) != "$ACADVER" ||
			string(bytes.TrimSpace(lines[i-1])) != "9" ||
			string(bytes.TrimSpace(lines[i+1])) != "1" {
			continue
		}
		value := []byte(code)
		if bytes.HasSuffix(lines[i+2], []byte("\r")) {
			value = append(value, '\r')
		}
		lines[i+2] = value
		return bytes.Join(lines, []byte("\n"))
	}

	header := [][]byte{
		[]byte("  0"), []byte("SECTION"),
		[]byte("  2"), []byte("HEADER"),
		[]byte("  9"), []byte("$ACADVER"),
		[]byte("  1"), []byte(code),
		[]byte("  0"), []byte("ENDSEC"),
	}
	var out bytes.Buffer
	for _, l := range header {
		out.Write(l)
		out.Write(eol)
	}
	out.Write(data)
	return out.Bytes()
}
