package validate_test

import (
	"testing"

	"github.com/blocksentry/sentry/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type chatRequest struct {
	Message string `json:"message" validate:"required,notblank"`
}

func TestCheck(t *testing.T) {
	tt := []struct {
		name    string
		val     chatRequest
		invalid bool
	}{
		{name: "valid", val: chatRequest{Message: "hello"}},
		{name: "empty", val: chatRequest{Message: ""}, invalid: true},
		{name: "blank", val: chatRequest{Message: "   \t"}, invalid: true},
	}

	t.Log("Given the need to validate request models.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := validate.Check(tst.val)

				if !tst.invalid {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould accept the model : %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould accept the model.", success, testID)
					return
				}

				if !validate.IsFieldErrors(err) {
					t.Fatalf("\t%s\tTest %d:\tShould get field errors : %v", failed, testID, err)
				}
				t.Logf("\t%s\tTest %d:\tShould get field errors.", success, testID)

				fields := validate.GetFieldErrors(err).Fields()
				if _, exists := fields["message"]; !exists {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, fields)
					t.Fatalf("\t%s\tTest %d:\tShould report the json field name.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould report the json field name.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
