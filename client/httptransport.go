package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/foomo/navserver/pkg/handler"
	"github.com/pkg/errors"
)

type httpTransport struct {
	client   *http.Client
	endpoint string
}

// NewHTTPTransport will create a new http transport for the given server and client.
// Caution: the provided server url is not validated!
func NewHTTPTransport(server string, client *http.Client) Transport {
	return &httpTransport{
		endpoint: strings.TrimSuffix(server, "/"),
		client:   client,
	}
}

func (ht *httpTransport) Close() {
	// nothing to do here
}

func (ht *httpTransport) Call(ctx context.Context, route handler.Route, request interface{}, response interface{}) error {
	requestBytes, err := json.Marshal(request)
	if err != nil {
		return errors.Wrap(err, "could not marshal request")
	}
	req, err := http.NewRequestWithContext(ctx,
		http.MethodPost,
		ht.endpoint+"/"+string(route),
		bytes.NewReader(requestBytes),
	)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	httpResponse, err := ht.client.Do(req)
	if err != nil {
		return err
	}
	defer httpResponse.Body.Close()

	responseBytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return errors.Wrap(err, "could not read response")
	}
	if err := decodeReply(responseBytes, response); err != nil {
		return err
	}
	if httpResponse.StatusCode != http.StatusOK {
		return errors.Errorf("non 200 reply: %s", httpResponse.Status)
	}
	return nil
}
