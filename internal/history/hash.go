package history

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"golang.org/x/text/unicode/norm"
)

// DomainCompile separates compile hashes from any other hash domain.
const DomainCompile = "automodel/compile/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContentHash identifies a compiled predicate. Strings are NFC
// normalized so that equivalent Unicode spellings hash alike.
func ContentHash(table, expression, strategy string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// encoding a []string cannot fail
	_ = enc.Encode([]string{norm.NFC.String(table), norm.NFC.String(expression), norm.NFC.String(strategy)})
	return hashWithDomain(DomainCompile, bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
