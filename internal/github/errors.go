// internal/github/errors.go
package github

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"

	custom_errors "oss-tldr/internal/errors"
)

// classify turns GitHub refusals into RepositoryNotAccessibleError. Anything
// else is returned unchanged.
func classify(repo string, err error) error {
	reason := ""

	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse
	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		reason = "GitHub API rate limit exceeded, try again later"
	case errors.As(err, &respErr) && respErr.Response != nil:
		switch respErr.Response.StatusCode {
		case http.StatusNotFound:
			reason = "repository not found or you do not have access to it"
		case http.StatusUnauthorized:
			reason = "GitHub authentication expired, sign in again"
		case http.StatusForbidden:
			msg := strings.ToLower(respErr.Message)
			if strings.Contains(msg, "saml") || strings.Contains(msg, "organization") {
				reason = "access restricted by organization policy"
			} else {
				reason = "access to the repository was denied"
			}
		case http.StatusUnavailableForLegalReasons:
			reason = "repository unavailable for legal reasons"
		}
	}

	if reason == "" {
		return err
	}
	return &custom_errors.RepositoryNotAccessibleError{Repo: repo, Reason: reason, Err: err}
}
