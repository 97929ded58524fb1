package hub

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/venicegeo/sat-datahub/util"
)

// catalog endpoints rate limit and flake under load, trip after repeated
// failures instead of hammering them
var hubBreaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
	Name:    "datahub-http",
	Timeout: 30 * time.Second,
	ReadyToTrip: func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	},
})

// doRequest sends an HTTP request through the shared client behind the
// circuit breaker. Responses with server error status count as failures.
func doRequest(request *http.Request) (*http.Response, error) {
	return hubBreaker.Execute(func() (*http.Response, error) {
		response, err := util.HTTPClient().Do(request)
		if err != nil {
			return nil, err
		}
		if response.StatusCode >= 500 {
			response.Body.Close()
			return nil, fmt.Errorf("catalog endpoint failed: %v", response.Status)
		}
		return response, nil
	})
}
