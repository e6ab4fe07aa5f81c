package errors

import (
	"errors"
	"fmt"
)

// UpstreamError carries the raw status and endpoint of a failed travel API call.
type UpstreamError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (u *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned %d: %s", u.Endpoint, u.StatusCode, u.Body)
}

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	UpstreamStatus   int    `json:"upstream_status,omitempty"`
	UpstreamEndpoint string `json:"upstream_endpoint,omitempty"`
	UpstreamBody     string `json:"upstream_body,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var upErr *UpstreamError
	if errors.As(err, &upErr) {
		d.UpstreamStatus = upErr.StatusCode
		d.UpstreamEndpoint = upErr.Endpoint
		d.UpstreamBody = upErr.Body
	}

	return d
}
