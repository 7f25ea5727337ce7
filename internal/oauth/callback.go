package oauth

import (
	"net/url"
	"strconv"
	"time"
)

// callbackParams are the values an authorization server may return on the
// redirect. Implicit grants put them in the fragment, code grants in the
// query.
type callbackParams struct {
	state            string
	code             string
	accessToken      string
	tokenType        string
	expiresIn        time.Duration
	scope            string
	errorCode        string
	errorDescription string
}

func parseCallback(u *url.URL) callbackParams {
	values := url.Values{}
	if u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			for k, v := range frag {
				values[k] = v
			}
		}
	}
	for k, v := range u.Query() {
		if _, ok := values[k]; !ok {
			values[k] = v
		}
	}

	p := callbackParams{
		state:            values.Get("state"),
		code:             values.Get("code"),
		accessToken:      values.Get("access_token"),
		tokenType:        values.Get("token_type"),
		scope:            values.Get("scope"),
		errorCode:        values.Get("error"),
		errorDescription: values.Get("error_description"),
	}
	if s := values.Get("expires_in"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.expiresIn = time.Duration(n) * time.Second
		}
	}
	return p
}
