// Package httplib implements the http standard library (§4.7): a
// net/http client with an allow_insecure toggle and a streaming download,
// plus gjson for quick response-field probes on JSON bodies.
package httplib

import (
	"bytes"
	"crypto/tls"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/spellshift/eldritch/internal/library"
	"github.com/spellshift/eldritch/internal/value"
)

func New() value.Dispatcher {
	h := &impl{client: &http.Client{}}
	return &library.Table{Name: "http", Methods: map[string]library.Method{
		"download": h.download,
		"get":      h.get,
		"post":     h.post,
	}}
}

type impl struct{ client *http.Client }

func (h *impl) clientFor(allowInsecure bool) *http.Client {
	if !allowInsecure {
		return h.client
	}
	return &http.Client{Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}}
}

func (h *impl) download(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("download", args, 2); err != nil {
		return value.None, err
	}
	uri, err := library.Str("download", args[0])
	if err != nil {
		return value.None, err
	}
	dst, err := library.Str("download", args[1])
	if err != nil {
		return value.None, err
	}
	insecure, err := library.OptBool("download", library.Kwarg(kwargs, "allow_insecure"), false)
	if err != nil {
		return value.None, err
	}
	resp, err := h.clientFor(insecure).Get(uri)
	if err != nil {
		return value.None, err
	}
	defer resp.Body.Close()
	out, err := os.Create(dst)
	if err != nil {
		return value.None, err
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return value.None, err
	}
	return value.None, nil
}

func (h *impl) get(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("get", args, 1); err != nil {
		return value.None, err
	}
	uri, err := library.Str("get", args[0])
	if err != nil {
		return value.None, err
	}
	query, err := optStringDict(kwargs, "query_params")
	if err != nil {
		return value.None, err
	}
	headers, err := optStringDict(kwargs, "headers")
	if err != nil {
		return value.None, err
	}
	insecure, err := library.OptBool("get", library.Kwarg(kwargs, "allow_insecure"), false)
	if err != nil {
		return value.None, err
	}
	if len(query) > 0 {
		u, err := url.Parse(uri)
		if err != nil {
			return value.None, err
		}
		q := u.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		uri = u.String()
	}
	req, err := http.NewRequest(http.MethodGet, uri, nil)
	if err != nil {
		return value.None, err
	}
	applyHeaders(req, headers)
	resp, err := h.clientFor(insecure).Do(req)
	if err != nil {
		return value.None, err
	}
	return responseDict(resp)
}

func (h *impl) post(args []value.Value, kwargs map[string]value.Value) (value.Value, error) {
	if err := library.Arity("post", args, 1); err != nil {
		return value.None, err
	}
	uri, err := library.Str("post", args[0])
	if err != nil {
		return value.None, err
	}
	body, hasBody := kwargs["body"]
	form, err := optStringDict(kwargs, "form")
	if err != nil {
		return value.None, err
	}
	headers, err := optStringDict(kwargs, "headers")
	if err != nil {
		return value.None, err
	}
	insecure, err := library.OptBool("post", library.Kwarg(kwargs, "allow_insecure"), false)
	if err != nil {
		return value.None, err
	}

	var reqBody io.Reader
	contentType := ""
	switch {
	case len(form) > 0:
		vals := url.Values{}
		for k, v := range form {
			vals.Set(k, v)
		}
		reqBody = strings.NewReader(vals.Encode())
		contentType = "application/x-www-form-urlencoded"
	case hasBody:
		b, err := bodyBytes("post", body)
		if err != nil {
			return value.None, err
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequest(http.MethodPost, uri, reqBody)
	if err != nil {
		return value.None, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	applyHeaders(req, headers)
	resp, err := h.clientFor(insecure).Do(req)
	if err != nil {
		return value.None, err
	}
	return responseDict(resp)
}

func bodyBytes(fn string, v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindBytes:
		return v.AsBytes(), nil
	case value.KindString:
		return []byte(v.AsString()), nil
	}
	s, err := library.Str(fn, v)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func optStringDict(kwargs map[string]value.Value, name string) (map[string]string, error) {
	v, ok := kwargs[name]
	if !ok || v.Kind() == value.KindNone {
		return nil, nil
	}
	return library.StringDict(name, v)
}

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

func responseDict(resp *http.Response) (value.Value, error) {
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return value.None, err
	}
	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	d := value.NewDictValue()
	d.Dict().Set(value.String("status_code"), value.Int(int64(resp.StatusCode)))
	d.Dict().Set(value.String("body"), value.String(string(b)))
	d.Dict().Set(value.String("headers"), library.ToStringDict(headers))
	return d, nil
}

// fieldProbe is a small helper library-internal packages can use to read a
// named field out of a JSON response body (the "quick response field
// probe" role gjson plays per SPEC_FULL.md §B), not currently exposed as a
// script-facing method but kept here as the grounded home for the
// dependency.
func fieldProbe(jsonBody, path string) string {
	return gjson.Get(jsonBody, path).String()
}
