package cli

import (
	"context"
	"errors"

	"github.com/THE-DEEPDAS/HTT/internal/gateway"
	"github.com/THE-DEEPDAS/HTT/internal/output"
	"github.com/THE-DEEPDAS/HTT/internal/service"
)

// describe turns a command failure into what the user sees.
func describe(err error) *output.CLIError {
	return describeFor(gateway.RealmUser, err)
}

func describeFor(realm gateway.Realm, err error) *output.CLIError {
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	login := "storefront login"
	if realm == gateway.RealmAdmin {
		login = "storefront admin login"
	}

	switch {
	case errors.Is(err, gateway.ErrAuthentication):
		return &output.CLIError{
			Summary:    gateway.Message(err),
			Suggestion: "check your email and password",
			ExitCode:   output.ExitAuthError,
			Err:        err,
		}
	case errors.Is(err, gateway.ErrLoginRequired):
		return &output.CLIError{
			Summary:    "login required",
			Detail:     gateway.Message(err),
			Suggestion: "run `" + login + "`",
			ExitCode:   output.ExitAuthError,
			Err:        err,
		}
	case service.IsValidation(err):
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError, Err: err}
	}

	switch gateway.Classify(err) {
	case gateway.KindTransport:
		return &output.CLIError{
			Summary:    "storefront API unreachable",
			Detail:     err.Error(),
			Suggestion: "check your connection or STOREFRONT_API_BASE_URL",
			ExitCode:   output.ExitUpstream,
			Err:        err,
		}
	case gateway.KindServer:
		return &output.CLIError{
			Summary:  "the storefront API failed, try again later",
			Detail:   gateway.Message(err),
			ExitCode: output.ExitUpstream,
			Err:      err,
		}
	case gateway.KindCanceled:
		return &output.CLIError{Summary: "interrupted", ExitCode: output.ExitGeneral, Err: err}
	}
	return &output.CLIError{Summary: gateway.Message(err), ExitCode: output.ExitGeneral, Err: err}
}

// requireLogin fails early when the realm has no access token.
func requireLogin(ctx context.Context, realm gateway.Realm) error {
	ok := rt.Auth.IsAuthenticated(ctx)
	if realm == gateway.RealmAdmin {
		ok = rt.Auth.IsAdminAuthenticated(ctx)
	}
	if ok {
		return nil
	}
	return describeFor(realm, gateway.ErrLoginRequired)
}

func usageError(summary string) *output.CLIError {
	return &output.CLIError{Summary: summary, ExitCode: output.ExitUsageError}
}
