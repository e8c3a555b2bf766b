package client

import (
	"github.com/foomo/navserver/responses"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type serverResponse struct {
	Reply jsoniter.RawMessage `json:"reply"`
}

// decodeReply unwraps {"reply": ...} into response, a responses.Error reply
// is returned as error
func decodeReply(data []byte, response interface{}) error {
	var envelope serverResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return errors.Wrapf(err, "could not unmarshal response %q", string(data))
	}
	if len(envelope.Reply) > 0 && envelope.Reply[0] == '{' {
		remoteErr := &responses.Error{}
		if err := json.Unmarshal(envelope.Reply, remoteErr); err == nil && remoteErr.Code != 0 && remoteErr.Message != "" {
			return remoteErr
		}
	}
	if err := json.Unmarshal(envelope.Reply, response); err != nil {
		return errors.Wrap(err, "could not unmarshal reply")
	}
	return nil
}
