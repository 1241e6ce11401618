package dispatch

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/richochetclementine1315/Quill/core/catalog"
	qerrors "github.com/richochetclementine1315/Quill/core/errors"
)

const defaultFileField = "image"

// encodedRequest is built once per call and replayed for every attempt
type encodedRequest struct {
	path        string
	body        []byte
	contentType string
}

func encode(desc catalog.Descriptor, params Params) (*encodedRequest, error) {
	path, err := desc.Expand(params.Path)
	if err != nil {
		return nil, err
	}
	if len(params.Query) > 0 {
		path += "?" + params.Query.Encode()
	}

	enc := &encodedRequest{path: path}
	switch desc.Encoding {
	case catalog.EncodingJSON:
		if params.Body == nil {
			return enc, nil
		}
		enc.body, err = encodeJSON(params.Body)
		if err != nil {
			return nil, qerrors.New(qerrors.KindInvalidRequest, desc.Name, "body cannot be encoded as JSON").WithCause(err)
		}
		enc.contentType = "application/json"
	case catalog.EncodingMultipart:
		if params.File == nil || params.File.Reader == nil {
			return nil, qerrors.New(qerrors.KindInvalidRequest, desc.Name, "no file provided")
		}
		enc.body, enc.contentType, err = encodeMultipart(params.File)
		if err != nil {
			return nil, qerrors.New(qerrors.KindInvalidRequest, desc.Name, "file cannot be read").WithCause(err)
		}
	}
	return enc, nil
}

func encodeJSON(v interface{}) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	// the pooled buffer is reused after Put
	return append([]byte(nil), buf.B...), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(f *File) ([]byte, string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	field := f.Field
	if field == "" {
		field = defaultFileField
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	mw := multipart.NewWriter(buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return append([]byte(nil), buf.B...), mw.FormDataContentType(), nil
}
