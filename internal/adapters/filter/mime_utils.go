package filter

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"
)

// extractTextFromMessage pulls the classifiable text out of a parsed message.
// For multipart messages it concatenates the text/plain parts; anything else
// falls back to the raw body.
func extractTextFromMessage(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		return readAllString(msg.Body)
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readAllString(msg.Body)
	}
	boundary, ok := params["boundary"]
	if !ok {
		return readAllString(msg.Body)
	}

	mr := multipart.NewReader(msg.Body, boundary)
	var text bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return whatever text was collected before the malformed part
			if text.Len() > 0 {
				return text.String(), nil
			}
			return readAllString(msg.Body)
		}

		partType := strings.ToLower(part.Header.Get("Content-Type"))
		if strings.Contains(partType, "text/plain") {
			partBytes, err := io.ReadAll(part)
			if err != nil {
				continue
			}
			text.Write(partBytes)
			text.WriteString("\n")
		}
		// Nested multiparts and attachments are skipped
	}

	if text.Len() > 0 {
		return text.String(), nil
	}
	return "[No text content found in multipart message]", nil
}

func readAllString(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeEncodedHeader decodes RFC 2047 encoded-word headers like subjects
func decodeEncodedHeader(value string) (string, error) {
	dec := new(mime.WordDecoder)
	return dec.DecodeHeader(value)
}
