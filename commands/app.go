package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cityguard/client"
	"cityguard/config"
	"cityguard/i18n"
	"cityguard/maprender"

	"github.com/apex/log"
	"github.com/golang/geo/s2"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const appHelp = `Commands:
  email <address>        set the email field
  password [secret]      set the password field (prompted when omitted)
  register | login       submit the credentials
  goto <screen>          login, register, home, report, list or map
  desc <text>            set the report description
  image                  choose a photo for the report
  locate                 capture the current position
  submit                 send the report
  refresh                reload the reports
  show                   draw the current screen again
  logout | quit`

// AppCommand returns the interactive terminal client
func AppCommand() *cobra.Command {
	var (
		apiURL   string
		lang     string
		lat, lon float64
	)

	cmd := &cobra.Command{
		Use:   "app",
		Short: "Interactive terminal client",
		Long: `Drive the CityGuard app from a terminal. Each line is one action.

The device position is fixed with --lat and --lon; without them location
permission counts as refused.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := initialise(false); err != nil {
				return err
			}
			if apiURL == "" {
				apiURL = config.AppConfig.APIURL
			}
			if lang == "" {
				lang = config.AppConfig.DefaultLang
			}
			if !i18n.Supported(lang) {
				return fmt.Errorf("unsupported language %q", lang)
			}

			var locator client.Locator = client.DeniedLocator{}
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
				if !s2.LatLngFromDegrees(lat, lon).IsValid() {
					return fmt.Errorf("invalid position %g, %g", lat, lon)
				}
				locator = client.FixedLocator{Position: client.Location{Latitude: lat, Longitude: lon}}
			}

			api := client.NewAPI(apiURL)
			api.Language = lang

			t := newTerminal(cmd.InOrStdin(), cmd.OutOrStdout(), api, locator, lang)
			log.WithFields(log.Fields{"api": apiURL, "lang": lang}).Debug("terminal client started")
			return t.run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&apiURL, "api", "", "server base URL (default from config)")
	cmd.Flags().StringVar(&lang, "lang", "", "interface language (en or hu)")
	cmd.Flags().Float64Var(&lat, "lat", 0, "device latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "device longitude")

	return cmd
}

// terminal is a line-oriented shell around client.Controller. Alerts are
// printed as they happen and the screen is drawn again after every line that
// changed the state.
type terminal struct {
	in    *bufio.Scanner
	inRaw io.Reader
	out   io.Writer

	ctrl    *client.Controller
	lang    string
	mapOpts maprender.Options
	dirty   bool
}

func newTerminal(in io.Reader, out io.Writer, backend client.Backend, locator client.Locator, lang string) *terminal {
	t := &terminal{
		in:      bufio.NewScanner(in),
		inRaw:   in,
		out:     out,
		lang:    lang,
		mapOpts: mapOptions(),
	}

	notify := client.NotifierFunc(func(message string) {
		fmt.Fprintf(t.out, "! %s\n", message)
	})
	t.ctrl = client.NewController(backend, notify,
		client.WithImagePicker(promptPicker{t}),
		client.WithLocator(locator),
		client.WithLanguage(lang),
	)
	t.ctrl.Subscribe(func(client.AppState) { t.dirty = true })

	return t
}

func (t *terminal) run(ctx context.Context) error {
	t.render()
	for {
		fmt.Fprint(t.out, "> ")
		line, ok := t.readLine()
		if !ok {
			fmt.Fprintln(t.out)
			return t.in.Err()
		}

		quit, err := t.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(t.out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		if t.dirty {
			t.render()
		}
	}
}

func (t *terminal) readLine() (string, bool) {
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

// exec runs one command line. Failed controller actions have already been
// shown as alerts and are not returned.
func (t *terminal) exec(ctx context.Context, line string) (quit bool, err error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "":
		return false, nil
	case "help", "?":
		fmt.Fprintln(t.out, appHelp)
	case "email":
		t.ctrl.SetEmail(arg)
	case "password":
		if arg == "" {
			if arg, err = t.readSecret(); err != nil {
				return false, err
			}
		}
		t.ctrl.SetPassword(arg)
	case "register":
		silent(t.ctrl.Register(ctx))
	case "login":
		silent(t.ctrl.Login(ctx))
	case "goto":
		screen, err := client.ParseScreen(arg)
		if err != nil {
			return false, err
		}
		return false, t.ctrl.Navigate(screen)
	case "desc":
		t.ctrl.SetDescription(arg)
	case "image":
		silent(t.ctrl.PickImage(ctx))
	case "locate":
		silent(t.ctrl.GetLocation(ctx))
	case "submit":
		silent(t.ctrl.SubmitReport(ctx))
	case "refresh":
		silent(t.ctrl.FetchReports(ctx))
	case "show":
		t.dirty = true
	case "logout":
		silent(t.ctrl.Logout(ctx))
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q, try help", name)
	}
	return false, nil
}

// silent drops an error the controller already alerted.
func silent(err error) {
	if err != nil {
		log.WithError(err).Debug("action failed")
	}
}

func (t *terminal) render() {
	t.dirty = false
	st := t.ctrl.State()
	screen, err := client.Render(st, t.lang, t.mapOpts)
	if err != nil {
		fmt.Fprintf(t.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(t.out, "\n== %s ==\n%s\n", st.Screen, screen)
}

// readSecret reads the password without echo when stdin is a terminal and
// falls back to the next input line otherwise.
func (t *terminal) readSecret() (string, error) {
	fmt.Fprintf(t.out, "%s: ", i18n.T(t.lang, "Password"))
	if f, ok := t.inRaw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(t.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(secret), nil
	}

	line, ok := t.readLine()
	if !ok {
		return "", errors.New("failed to read password: end of input")
	}
	return line, nil
}

// promptPicker asks for the photo path on the next input line. An empty line
// cancels.
type promptPicker struct{ t *terminal }

func (p promptPicker) PickImage(context.Context) (string, bool, error) {
	fmt.Fprintf(p.t.out, "%s (path, empty to cancel): ", i18n.T(p.t.lang, "PickImage"))
	line, ok := p.t.readLine()
	if !ok {
		return "", false, io.ErrUnexpectedEOF
	}
	if line == "" {
		return "", false, nil
	}
	if !strings.Contains(line, "://") {
		line = "file://" + line
	}
	return line, true, nil
}
