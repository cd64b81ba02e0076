package api

import (
	"bytes"
	"mime/multipart"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type File struct {
	Field string
	Name  string
	Data  []byte
}

// Form is a multipart payload. Lists and objects go through SetJSON so
// the backend receives them JSON-stringified.
type Form struct {
	Fields map[string]string
	Files  []File
}

func NewForm() *Form {
	return &Form{Fields: map[string]string{}}
}

func (f *Form) Set(field, value string) *Form {
	f.Fields[field] = value
	return f
}

func (f *Form) SetJSON(field string, v any) error {
	b, err := sonic.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", field)
	}
	f.Fields[field] = string(b)
	return nil
}

func (f *Form) AddFile(file File) *Form {
	f.Files = append(f.Files, file)
	return f
}

func (f *Form) encode() ([]byte, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", errors.Wrapf(err, "write field %s", k)
		}
	}
	for _, file := range f.Files {
		fw, err := w.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", errors.Wrapf(err, "create part %s", file.Name)
		}
		if _, err := fw.Write(file.Data); err != nil {
			return nil, "", errors.Wrapf(err, "write part %s", file.Name)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "close multipart")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
