package public

import (
	"github.com/blocksentry/sentry/business/sys/validate"
	"github.com/blocksentry/sentry/foundation/etherscan"
)

type securityAnalysis struct {
	Result []etherscan.Transaction `json:"result"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,notblank"`
}

// Validate checks the data in the model is considered clean.
func (cr chatRequest) Validate() error {
	if err := validate.Check(cr); err != nil {
		return err
	}
	return nil
}

type chatReply struct {
	Reply string `json:"reply"`
}
