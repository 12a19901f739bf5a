package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide explains how to obtain a bearer token
func ShowTokenGuide(w io.Writer) {
	rule := strings.Repeat("=", 72)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "BEARER TOKEN GUIDE")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "geoscraper calls the v2 recent search endpoint with an app-only bearer token.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 1: Open the developer portal")
	fmt.Fprintln(w, "   - Go to https://developer.twitter.com/en/portal/dashboard")
	fmt.Fprintln(w, "   - Sign in and select (or create) a project and app")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 2: Open \"Keys and tokens\" for the app")
	fmt.Fprintln(w, "   - Under \"Authentication Tokens\", generate or regenerate the Bearer Token")
	fmt.Fprintln(w, "   - The token is shown once; copy it right away")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STEP 3: Store it")
	fmt.Fprintln(w, "   - geoscraper auth login            (prompts for the token)")
	fmt.Fprintln(w, "   - or export "+TokenEnv+"=...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "NOTES:")
	fmt.Fprintln(w, "   - Recent search allows 450 requests per 15 minutes per app")
	fmt.Fprintln(w, "   - The token grants read access on behalf of your app; never share it")
	fmt.Fprintln(w, rule)
}
