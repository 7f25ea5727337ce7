package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/cli"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/geojson"
	"github.com/sfomuseum/cocoa-www-geotag-sfomuseum/internal/router"
)

var (
	routeMessage  string
	routeBodyFile string
	routeOutput   cli.OutputFlags
)

// routeCmd shows how an event would be dispatched without dispatching it.
var routeCmd = &cobra.Command{
	Use:   "route [callback-url]",
	Short: "Show how a callback URL or page message is routed",
	Long: `Classifies a geotag:// callback URL, or a message posted by the page, the
same way the running application does and prints what would happen.

Examples:
  geotag route 'geotag://oauth2#access_token=...&state=...'
  geotag route 'geotag://oembed?url=https://example.com/object/1'
  geotag route --message publishData --body-file features.geojson`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRoute,
}

func init() {
	rootCmd.AddCommand(routeCmd)

	cli.RegisterOutputFlags(routeCmd, &routeOutput)
	routeCmd.Flags().StringVar(&routeMessage, "message", "", "Name of a message posted by the page")
	routeCmd.Flags().StringVar(&routeBodyFile, "body-file", "", "File holding the message body (- for stdin)")
}

func runRoute(cmd *cobra.Command, args []string) error {
	var ev router.Event
	switch {
	case len(args) == 1 && routeMessage == "":
		ev = router.CallbackURL{Raw: args[0]}
	case len(args) == 0 && routeMessage != "":
		body, err := readBody(cmd.InOrStdin(), routeBodyFile)
		if err != nil {
			return err
		}
		ev = router.ScriptMessage{Name: routeMessage, Body: body}
	default:
		return errors.New("give either a callback URL or --message")
	}

	format, err := routeOutput.OutputFormat()
	if err != nil {
		return err
	}

	route := router.Classify(ev)
	t := cli.Table{Name: "route", Columns: []string{"Field", "Value"}}
	t.AppendRow("Route", route.String())

	var routeErr error
	switch route {
	case router.RouteOAuth2:
		u, _ := url.Parse(ev.(router.CallbackURL).Raw)
		params := u.Query()
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			for k, v := range frag {
				params[k] = v
			}
		}
		t.AppendRow("State", present(params.Get("state")))
		switch {
		case params.Get("error") != "":
			t.AppendRow("Outcome", "denied: "+params.Get("error"))
		case params.Get("access_token") != "":
			t.AppendRow("Outcome", "access token")
		case params.Get("code") != "":
			t.AppendRow("Outcome", "authorization code")
		default:
			t.AppendRow("Outcome", "malformed")
		}

	case router.RouteOEmbed:
		u, _ := url.Parse(ev.(router.CallbackURL).Raw)
		target := u.Query().Get("url")
		if target == "" {
			t.AppendRow("Outcome", "ignored, no url parameter")
		} else {
			t.AppendRow("Opens", target)
		}

	case router.RoutePublishData:
		payload, err := geojson.Decode(ev.(router.ScriptMessage).Body)
		if err != nil {
			routeErr = &router.DataError{Err: err}
			t.AppendRow("Outcome", err.Error())
			break
		}
		b := payload.Bound()
		t.AppendRow("Type", payload.Type)
		t.AppendRow("Features", strconv.Itoa(payload.Count()))
		t.AppendRow("Bounds", fmt.Sprintf("%f,%f %f,%f", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat()))

	default:
		t.AppendRow("Outcome", "ignored")
	}
	if err := cli.Render(cmd.OutOrStdout(), format, routeOutput.NoHeaders, t); err != nil {
		return err
	}
	return routeErr
}

func present(v string) string {
	if v == "" {
		return "missing"
	}
	return "present"
}

func readBody(stdin io.Reader, path string) (string, error) {
	var (
		b   []byte
		err error
	)
	switch path {
	case "":
		return "", nil
	case "-":
		b, err = io.ReadAll(stdin)
	default:
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}
	return string(b), nil
}
