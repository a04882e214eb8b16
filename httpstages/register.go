package httpstages

import (
	"net/http"

	"github.com/dcshock/stepreg/registry"
)

// Register adds the HTTP callables to reg under their conventional names:
// "fetch", "parsejson", and "expect-field". If client is nil,
// http.DefaultClient is used for fetch.
func Register(reg *registry.Registry, client *http.Client) error {
	if _, err := reg.Register(Fetcher(client), registry.WithName("fetch")); err != nil {
		return err
	}
	if _, err := reg.Register(ParseJSON, registry.WithName("parsejson")); err != nil {
		return err
	}
	if _, err := reg.Register(ExpectField, registry.WithName("expect-field")); err != nil {
		return err
	}
	return nil
}
