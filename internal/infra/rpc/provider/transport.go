package provider

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Transport encodes a flat field map into a Request. Implementations differ only
// in where the fields travel: a form body, the query string or a JSON body.
type Transport interface {
	Name() string
	Encode(fields map[string]any) (Request, error)
}

// Transport names accepted by NewTransport.
const (
	TransportForm  = "form"
	TransportQuery = "query"
	TransportJSON  = "json"
)

// NewTransport returns the transport registered under name.
func NewTransport(name string) (Transport, error) {
	switch name {
	case TransportForm, "":
		return FormTransport{}, nil
	case TransportQuery:
		return QueryTransport{}, nil
	case TransportJSON:
		return JSONTransport{}, nil
	}
	return nil, fmt.Errorf("unknown transport %q", name)
}

// FormTransport posts the fields as application/x-www-form-urlencoded, the same
// encoding a browser form submission produces, but with the status observable.
type FormTransport struct{}

func (FormTransport) Name() string { return TransportForm }

func (FormTransport) Encode(fields map[string]any) (Request, error) {
	values, err := toValues(fields)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Method:      http.MethodPost,
		Body:        []byte(values.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	}, nil
}

// QueryTransport sends the fields as URL query parameters on a GET.
type QueryTransport struct{}

func (QueryTransport) Name() string { return TransportQuery }

func (QueryTransport) Encode(fields map[string]any) (Request, error) {
	values, err := toValues(fields)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Method: http.MethodGet,
		Query:  values,
	}, nil
}

// JSONTransport posts the fields as a JSON object.
type JSONTransport struct{}

func (JSONTransport) Name() string { return TransportJSON }

func (JSONTransport) Encode(fields map[string]any) (Request, error) {
	for k, v := range fields {
		if _, err := formatValue(v); err != nil {
			return Request{}, fmt.Errorf("field %s: %w", k, err)
		}
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return Request{}, fmt.Errorf("marshal request: %w", err)
	}
	return Request{
		Method:      http.MethodPost,
		Body:        body,
		ContentType: "application/json",
	}, nil
}

func toValues(fields map[string]any) (url.Values, error) {
	values := make(url.Values, len(fields))
	for k, v := range fields {
		s, err := formatValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		values.Set(k, s)
	}
	return values, nil
}

// formatValue renders a primitive. Nested values are rejected: the endpoint
// only understands flat fields.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case json.Number:
		return x.String(), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}
