// Package resolver provides VarTable implementations that look up "$name"
// address-group references against something other than an in-process map:
// a rule-distribution service reachable over HTTP, with a bounded timeout so
// a slow or unreachable peer degrades to addrset.UnknownVariable rather than
// hanging the compiler.
package resolver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fako1024/httpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nrescobar/sentryrules/pkg/addrset"
)

// groupResponse is the wire shape returned by the distribution service for
// a single address-group lookup.
type groupResponse struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Error      string `json:"error,omitempty"`
}

// Remote resolves variable references by fetching the group's address
// expression from a remote rule-distribution service, the addrset analogue
// of the teacher's asynchronous, timeout-bounded hostname lookups in
// pkg/goDB/conditions/node/resolve.go.
type Remote struct {
	client   *http.Client
	baseURL  string
	timeout  time.Duration
	inFlight map[string]struct{}
}

// NewRemote returns a Remote resolver fetching group definitions from
// baseURL (e.g. "http://rules.internal:8080"), bounding every request by
// timeout.
func NewRemote(baseURL string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Remote{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		timeout: timeout,
	}
}

// Resolve implements addrset.VarTable by fetching the named group's address
// expression over HTTP. A timeout, transport error, or non-2xx/error-bearing
// response all degrade to an UnknownVariable error: per spec.md §7, a caller
// compiling a rule set can't distinguish "the service is down" from "the
// group doesn't exist" without risking a parse that silently drops coverage.
func (r *Remote) Resolve(name string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	res := new(groupResponse)
	url := fmt.Sprintf("%s/api/v1/groups/%s", r.baseURL, name)
	req := httpc.NewWithClient("GET", url, r.client).
		Timeout(r.timeout).
		ParseJSON(res)

	if err := req.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("resolving %q: %w", name, addrset.KindError(addrset.UnknownVariable))
	}
	if res.Error != "" || res.Expression == "" {
		return "", fmt.Errorf("resolving %q: %w", name, addrset.KindError(addrset.UnknownVariable))
	}
	return res.Expression, nil
}
