package dispatch

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"net/mail"
	"net/textproto"
)

// buildMIME renders an Email as an RFC 822 message: headers, a plain or
// HTML body, and optional base64-encoded attachments in a multipart/mixed
// envelope.
func buildMIME(msg Email) []byte {
	var buf bytes.Buffer

	from := msg.From
	if msg.FromName != "" {
		from = (&mail.Address{Name: msg.FromName, Address: msg.From}).String()
	}

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&buf, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	buf.WriteString("MIME-Version: 1.0\r\n")

	contentType := "text/plain; charset=UTF-8"
	if msg.HTML {
		contentType = "text/html; charset=UTF-8"
	}

	if len(msg.Attachments) == 0 {
		fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", contentType)
		buf.WriteString(msg.Body)
		return buf.Bytes()
	}

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	bodyPart, _ := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {contentType},
	})
	fmt.Fprint(bodyPart, msg.Body)

	for _, att := range msg.Attachments {
		part, _ := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/octet-stream"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", att.Name)},
		})
		writeBase64(part, att.Data)
	}

	mw.Close()
	return buf.Bytes()
}

// writeBase64 emits base64 content wrapped at 76 columns per RFC 2045.
func writeBase64(w io.Writer, data []byte) {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		fmt.Fprintf(w, "%s\r\n", encoded[:76])
		encoded = encoded[76:]
	}
	fmt.Fprintf(w, "%s\r\n", encoded)
}
