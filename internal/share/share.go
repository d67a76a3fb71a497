// Package share encodes cards into URL-safe tokens and back.
package share

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"strings"

	"github.com/verte-zerg/goalbingo/internal/model"
)

const (
	// Version is the envelope version written and accepted by this codec.
	Version = 1
	// ParamName is the query parameter carrying the token.
	ParamName = "d"

	maxPayloadBytes = 1 << 20
)

type envelope struct {
	G []string `json:"g"`
	C []bool   `json:"c"`
	V int      `json:"v"`
}

// EncodeCard returns the URL-safe token for card.
func EncodeCard(card model.Card) string {
	env := envelope{
		G: card.Goals[:],
		C: card.Completed[:],
		V: Version,
	}
	var text bytes.Buffer
	enc := json.NewEncoder(&text)
	enc.SetEscapeHTML(false)
	// Encoding strings and bools into memory does not fail.
	_ = enc.Encode(env)
	payload := bytes.TrimSuffix(text.Bytes(), []byte("\n"))

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	_, _ = zw.Write(payload)
	_ = zw.Close()

	token := base64.StdEncoding.EncodeToString(compressed.Bytes())
	token = strings.NewReplacer("+", "-", "/", "_").Replace(token)
	return strings.TrimRight(token, "=")
}

// DecodeCard parses a token produced by EncodeCard. ok is false for any
// malformed, corrupt or foreign-version token.
func DecodeCard(token string) (card model.Card, ok bool) {
	if token == "" {
		return model.Card{}, false
	}
	std := strings.NewReplacer("-", "+", "_", "/").Replace(token)
	std += strings.Repeat("=", (4-len(std)%4)%4)
	raw, err := base64.StdEncoding.DecodeString(std)
	if err != nil {
		return model.Card{}, false
	}

	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return model.Card{}, false
	}
	defer func() {
		// Best-effort close of in-memory reader.
		_ = zr.Close()
	}()
	payload, err := io.ReadAll(io.LimitReader(zr, maxPayloadBytes+1))
	if err != nil || len(payload) > maxPayloadBytes {
		return model.Card{}, false
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return model.Card{}, false
	}
	if env.V != Version || len(env.G) != model.CellCount || len(env.C) != model.CellCount {
		return model.Card{}, false
	}
	copy(card.Goals[:], env.G)
	copy(card.Completed[:], env.C)
	return card, true
}

// ShareURL returns pageURL with the card token set as the share parameter.
func ShareURL(pageURL string, card model.Card) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(ParamName, EncodeCard(card))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// CardFromURL decodes the share parameter of rawURL.
func CardFromURL(rawURL string) (model.Card, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return model.Card{}, false
	}
	token := u.Query().Get(ParamName)
	if token == "" {
		return model.Card{}, false
	}
	return DecodeCard(token)
}

// ClearShareParam returns rawURL without the share parameter.
func ClearShareParam(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Del(ParamName)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ParseCardArg accepts a share URL or a bare token.
func ParseCardArg(arg string) (model.Card, bool) {
	arg = strings.TrimSpace(arg)
	if strings.Contains(arg, "://") || strings.Contains(arg, "?") {
		return CardFromURL(arg)
	}
	return DecodeCard(arg)
}
