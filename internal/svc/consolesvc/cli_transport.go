package consolesvc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mkrupp/homecase-console/internal/domain"
	context_ "github.com/mkrupp/homecase-console/internal/infra/context"
	"github.com/mkrupp/homecase-console/internal/infra/logging"
	"github.com/mkrupp/homecase-console/internal/svc/accesssvc"
	"github.com/mkrupp/homecase-console/internal/svc/authsvc"
	"github.com/mkrupp/homecase-console/internal/svc/catalogsvc"
	"github.com/mkrupp/homecase-console/internal/util/ident"
)

var (
	// ErrRedirectedToLogin is returned when the access gate sends a command to the login route.
	ErrRedirectedToLogin = errors.New("redirected to login")
	// ErrActionFailed is returned when a command ends with an error notice.
	ErrActionFailed = errors.New("action failed")
	// ErrInvalidFlag is returned for a malformed flag value.
	ErrInvalidFlag = errors.New("invalid flag value")
)

// Menu labels.
const (
	LabelProducts = "Productos"
	LabelOrders   = "Órdenes"
	LabelLogin    = "Iniciar Sesión"
	LabelLogout   = "Cerrar Sesión"
)

// CLIConfig contains configuration parameters for the command-line transport.
type CLIConfig struct {
	// Output is the default output format ("text", "json", "yaml")
	Output string `env:"OUTPUT" default:"text"`
}

// IOStreams are the terminal streams a command reads from and writes to.
type IOStreams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdIO returns the process streams.
func StdIO() IOStreams {
	return IOStreams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// CLITransport maps console commands onto routes and views. Every command
// bound to a protected route passes through the router first.
type CLITransport struct {
	auth    *authsvc.AuthService
	router  *accesssvc.Router
	catalog catalogsvc.Client
	cfg     CLIConfig
	io      IOStreams
	log     logging.Logger

	output string
	lines  *bufio.Reader
}

// NewCLITransport creates a CLITransport.
func NewCLITransport(
	auth *authsvc.AuthService,
	router *accesssvc.Router,
	catalog catalogsvc.Client,
	cfg CLIConfig,
	streams IOStreams,
) *CLITransport {
	return &CLITransport{
		auth:    auth,
		router:  router,
		catalog: catalog,
		cfg:     cfg,
		io:      streams,
		log:     logging.GetLogger("svc.consolesvc.cli_transport"),
	}
}

// Execute runs the command line args.
func (t *CLITransport) Execute(ctx context.Context, args []string) error {
	root := t.Command()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	return nil
}

// Run executes args and returns the process exit code. Failures that were
// already rendered as a notice are not repeated; anything else gets one line
// on the error stream, with the details left to the log.
func (t *CLITransport) Run(ctx context.Context, args []string) int {
	err := t.Execute(ctx, args)
	if err == nil {
		return 0
	}

	t.log.DebugContext(ctx, "command failed", "error", err)

	if !errors.Is(err, ErrActionFailed) && !errors.Is(err, ErrRedirectedToLogin) {
		fmt.Fprintln(t.io.Err, userError(err))
	}

	return 1
}

// userError strips wrapped transport detail from errors that reach the terminal.
func userError(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return MsgConnection
	}

	return err.Error()
}

// Command builds the command tree.
func (t *CLITransport) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "console",
		Short:         "Catalog and order administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := NewRenderer(io.Discard, t.output); err != nil {
				return err
			}

			cmd.SetContext(context_.WithTraceID(cmd.Context(), ident.NewTraceID()))

			return nil
		},
	}

	root.SetIn(t.io.In)
	root.SetOut(t.io.Out)
	root.SetErr(t.io.Err)
	root.PersistentFlags().StringVarP(&t.output, "output", "o", t.cfg.Output, "output format: text, json or yaml")

	root.AddCommand(
		t.loginCommand(),
		t.logoutCommand(),
		t.whoamiCommand(),
		t.openCommand(),
		t.productsCommand(),
		t.ordersCommand(),
	)

	return root
}

func (t *CLITransport) render(doc Document) error {
	r, err := NewRenderer(t.io.Out, t.output)
	if err != nil {
		return err
	}

	if err := r.Render(doc); err != nil {
		return err
	}

	if doc.Notice != nil && doc.Notice.Error != "" {
		return ErrActionFailed
	}

	return nil
}

// navigate runs the access gate for path. A redirect renders the login hint
// and is returned as ErrRedirectedToLogin.
func (t *CLITransport) navigate(ctx context.Context, path string) (accesssvc.Navigation, error) {
	nav, err := t.router.Navigate(ctx, path)
	if err != nil {
		return nav, fmt.Errorf("navigate: %w", err)
	}

	if nav.Decision == accesssvc.RedirectToLogin {
		t.log.InfoContext(ctx, "redirected to login", "requested", nav.Requested)

		_ = t.render(Document{
			Route:  nav.Route.Path,
			Notice: &Notice{Error: "Inicia sesión para continuar: console login"},
		})

		return nav, ErrRedirectedToLogin
	}

	return nav, nil
}

func (t *CLITransport) sessionInfo(sess domain.Session) SessionInfo {
	info := SessionInfo{LoggedIn: sess.HasToken()}
	info.Role, _ = sess.Role()

	// Navigation links only appear once a role is known.
	if sess.HasRole() {
		for _, route := range t.router.Available(sess) {
			info.Menu = append(info.Menu, MenuEntry{
				Label: routeLabel(route.Path),
				Path:  route.Path,
				Roles: route.Allowed.Roles(),
			})
		}
	}

	label := LabelLogin
	if sess.HasRole() {
		label = LabelLogout
	}

	info.Menu = append(info.Menu, MenuEntry{Label: label, Path: accesssvc.RouteLogin})

	return info
}

func routeLabel(path string) string {
	switch path {
	case accesssvc.RouteProducts:
		return LabelProducts
	case accesssvc.RouteOrders:
		return LabelOrders
	default:
		return path
	}
}

func (t *CLITransport) loginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if _, err := t.navigate(ctx, accesssvc.RouteLogin); err != nil {
				return err
			}

			if username == "" {
				u, err := t.readLine("Usuario: ")
				if err != nil {
					return err
				}

				username = u
			}

			if password == "" {
				p, err := t.readPassword("Contraseña: ")
				if err != nil {
					return err
				}

				password = p
			}

			sess, err := t.auth.Login(ctx, domain.Credentials{Username: username, Password: password})
			if err != nil {
				_ = t.render(Document{Route: accesssvc.RouteLogin, Notice: &Notice{Error: loginErrorMessage(err)}})

				return errors.Join(ErrActionFailed, fmt.Errorf("login: %w", err))
			}

			info := t.sessionInfo(sess)

			return t.render(Document{
				Route:   accesssvc.RouteProducts,
				Notice:  &Notice{Message: MsgLoggedIn},
				Session: &info,
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoUsername), errors.Is(err, domain.ErrNoPassword):
		return "Por favor, ingresa usuario y contraseña."
	default:
		return MsgLoginFailed
	}
}

func (t *CLITransport) readLine(prompt string) (string, error) {
	fmt.Fprint(t.io.Err, prompt)

	if t.lines == nil {
		t.lines = bufio.NewReader(t.io.In)
	}

	line, err := t.lines.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// readPassword reads without echo when stdin is a terminal.
func (t *CLITransport) readPassword(prompt string) (string, error) {
	f, ok := t.io.In.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return t.readLine(prompt)
	}

	fmt.Fprint(t.io.Err, prompt)

	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(t.io.Err)

	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	return string(b), nil
}

func (t *CLITransport) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := t.auth.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}

			info := t.sessionInfo(domain.Session{})

			return t.render(Document{Route: accesssvc.RouteLogin, Notice: &Notice{Message: MsgLoggedOut}, Session: &info})
		},
	}
}

func (t *CLITransport) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session and the available routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := t.auth.Session(cmd.Context())
			if err != nil {
				return fmt.Errorf("read session: %w", err)
			}

			info := t.sessionInfo(sess)

			return t.render(Document{Session: &info})
		},
	}
}

func (t *CLITransport) openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open [path]",
		Short: "Navigate to a route; unknown paths open the product listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			nav, err := t.navigate(cmd.Context(), path)
			if err != nil {
				return err
			}

			switch nav.Route.Path {
			case accesssvc.RouteOrders:
				return t.withOrders(cmd.Context(), nil)
			case accesssvc.RouteLogin:
				info := t.sessionInfo(nav.Session)

				return t.render(Document{Route: accesssvc.RouteLogin, Session: &info})
			default:
				return t.withProducts(cmd.Context(), nil)
			}
		},
	}
}

// withProducts opens the products view behind the gate, runs act (if any),
// loads the listing and renders the result.
func (t *CLITransport) withProducts(
	ctx context.Context,
	act func(ctx context.Context, v *ProductsView) (Outcome, error),
) error {
	nav, err := t.navigate(ctx, accesssvc.RouteProducts)
	if err != nil {
		return err
	}

	v := NewProductsView(t.catalog, t.auth)
	defer v.Close()

	if act != nil {
		if _, err := act(ctx, v); err != nil && !isRejection(err) {
			return err
		}
	}

	if len(v.Products()) == 0 && v.Status() == StatusIdle {
		v.Load(ctx)
	}

	return t.render(t.productsDocument(nav, v))
}

func (t *CLITransport) productsDocument(nav accesssvc.Navigation, v *ProductsView) Document {
	notice := v.Notice()
	doc := Document{Route: nav.Route.Path, Notice: &notice, Products: make([]ProductRow, 0)}

	for _, p := range v.Products() {
		doc.Products = append(doc.Products, ProductRow{Product: p, Actions: v.Actions(nav.Session, p)})
	}

	if p, ok := v.SearchResult(); ok {
		doc.Product = &ProductRow{Product: p, Actions: v.Actions(nav.Session, p)}
	}

	if buf, ok := v.Editing(); ok {
		doc.Editing = &buf
	}

	return doc
}

func (t *CLITransport) withOrders(
	ctx context.Context,
	act func(ctx context.Context, v *OrdersView) (Outcome, error),
) error {
	nav, err := t.navigate(ctx, accesssvc.RouteOrders)
	if err != nil {
		return err
	}

	v := NewOrdersView(t.catalog, t.auth)
	defer v.Close()

	if act != nil {
		if _, err := act(ctx, v); err != nil && !isRejection(err) {
			return err
		}
	}

	if len(v.Orders()) == 0 && v.Status() == StatusIdle {
		v.Load(ctx)
	}

	notice := v.Notice()
	doc := Document{Route: nav.Route.Path, Notice: &notice, Orders: make([]OrderRow, 0)}

	for _, o := range v.Orders() {
		doc.Orders = append(doc.Orders, OrderRow{Order: o, Actions: v.Actions(o)})
	}

	if o, ok := v.SearchResult(); ok {
		doc.Order = &OrderRow{Order: o, Actions: v.Actions(o)}
	}

	return t.render(doc)
}

// isRejection reports whether err is a local refusal already shown as a notice.
func isRejection(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, ErrSubmissionInFlight) ||
		errors.Is(err, domain.ErrNoProductID) ||
		errors.Is(err, domain.ErrNoOrderID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrNoTranslations) ||
		errors.Is(err, domain.ErrDuplicateLanguage) ||
		errors.Is(err, domain.ErrInvalidLanguage)
}

func (t *CLITransport) productsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"productos"},
		Short:   "List and manage products",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return t.withProducts(cmd.Context(), nil)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List products",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return t.withProducts(cmd.Context(), nil)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Find a product by id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return t.withProducts(cmd.Context(), func(ctx context.Context, v *ProductsView) (Outcome, error) {
					return v.Search(ctx, args[0])
				})
			},
		},
		t.productCreateCommand(),
		t.productUpdateCommand(),
		t.productEditCommand(),
		t.productIDCommand("delete", "Delete a product", (*ProductsView).Delete),
		t.productIDCommand("activate", "Activate a product", (*ProductsView).Activate),
		t.productIDCommand("deactivate", "Deactivate a product", (*ProductsView).Deactivate),
		t.productToggleCommand(),
	)

	return cmd
}

func (t *CLITransport) productIDCommand(
	use, short string,
	act func(*ProductsView, context.Context, string) (Outcome, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.withProducts(cmd.Context(), func(ctx context.Context, v *ProductsView) (Outcome, error) {
				return act(v, ctx, args[0])
			})
		},
	}
}

func (t *CLITransport) productToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate an inactive product or deactivate an active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.withProducts(cmd.Context(), func(ctx context.Context, v *ProductsView) (Outcome, error) {
				v.Load(ctx)

				return v.ToggleActive(ctx, args[0])
			})
		},
	}
}

// productFlags are the fields of a product input given on the command line.
type productFlags struct {
	price        string
	translations []string
	description  string
}

func (f *productFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.price, "price", "", "price, e.g. 10.00")
	cmd.Flags().StringArrayVarP(&f.translations, "translation", "t", nil,
		`translation as "language=description"; repeatable`)
	cmd.Flags().StringVarP(&f.description, "description", "d", "",
		"description in the default language")
}

// input builds a product input on top of base.
func (f *productFlags) input(base domain.ProductInput) (domain.ProductInput, error) {
	in := base

	if f.price != "" {
		price, err := decimal.NewFromString(f.price)
		if err != nil {
			return in, errors.Join(ErrInvalidFlag, fmt.Errorf("--price %q: %w", f.price, err))
		}

		in.Price = price
	}

	if f.description != "" || len(f.translations) > 0 {
		in.Translations = nil

		if f.description != "" {
			in.Translations = append(in.Translations, domain.Translation{
				Language:    domain.DefaultLanguage,
				Description: f.description,
			})
		}

		for _, raw := range f.translations {
			lang, desc, ok := strings.Cut(raw, "=")
			if !ok {
				return in, fmt.Errorf("%w: --translation %q: want language=description", ErrInvalidFlag, raw)
			}

			in.Translations = append(in.Translations, domain.Translation{
				Language:    strings.TrimSpace(lang),
				Description: desc,
			})
		}
	}

	return in, nil
}

func (t *CLITransport) productCreateCommand() *cobra.Command {
	var (
		id    string
		flags productFlags
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a product; without flags a default product is created",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := flags.input(DefaultProductInput())
			if err != nil {
				return err
			}

			return t.withProducts(cmd.Context(), func(ctx context.Context, v *ProductsView) (Outcome, error) {
				return v.Create(ctx, id, in)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "product id (generated when omitted)")
	flags.register(cmd)

	return cmd
}

func (t *CLITransport) productUpdateCommand() *cobra.Command {
	var flags productFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace price and translations of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input(domain.ProductInput{})
			if err != nil {
				return err
			}

			return t.withProducts(cmd.Context(), func(ctx context.Context, v *ProductsView) (Outcome, error) {
				return v.Update(ctx, args[0], in)
			})
		},
	}

	flags.register(cmd)

	return cmd
}

func (t *CLITransport) productEditCommand() *cobra.Command {
	var price, description string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit price and description of a listed product, keeping unchanged fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var newPrice *decimal.Decimal

			if price != "" {
				p, err := decimal.NewFromString(price)
				if err != nil {
					return errors.Join(ErrInvalidFlag, fmt.Errorf("--price %q: %w", price, err))
				}

				newPrice = &p
			}

			return t.withProducts(cmd.Context(), func(ctx context.Context, v *ProductsView) (Outcome, error) {
				v.Load(ctx)

				if err := v.StartEdit(ctx, args[0]); err != nil {
					return OutcomeRejected, err
				}

				if newPrice != nil {
					v.SetEditPrice(*newPrice)
				}

				if cmd.Flags().Changed("description") {
					v.SetEditDescription(description)
				}

				return v.SaveEdit(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&price, "price", "", "new price")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")

	return cmd
}

func (t *CLITransport) ordersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		Aliases: []string{"ordenes"},
		Short:   "List and manage orders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return t.withOrders(cmd.Context(), nil)
		},
	}

	var (
		productID string
		quantity  int
	)

	create := &cobra.Command{
		Use:   "create",
		Short: "Place an order for a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return t.withOrders(cmd.Context(), func(ctx context.Context, v *OrdersView) (Outcome, error) {
				return v.Create(ctx, domain.OrderInput{ProductID: productID, Quantity: quantity})
			})
		},
	}
	create.Flags().StringVar(&productID, "product", "", "product id")
	create.Flags().IntVarP(&quantity, "quantity", "q", DefaultOrderQuantity, "quantity")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List orders",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return t.withOrders(cmd.Context(), nil)
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Find an order by id",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id := ""
				if len(args) == 1 {
					id = args[0]
				}

				return t.withOrders(cmd.Context(), func(ctx context.Context, v *OrdersView) (Outcome, error) {
					return v.Search(ctx, id)
				})
			},
		},
		create,
		t.orderIDCommand("receive", "Mark a pending order as received", (*OrdersView).MarkReceived),
		t.orderIDCommand("cancel", "Cancel a pending order", (*OrdersView).Cancel),
	)

	return cmd
}

func (t *CLITransport) orderIDCommand(
	use, short string,
	act func(*OrdersView, context.Context, string) (Outcome, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return t.withOrders(cmd.Context(), func(ctx context.Context, v *OrdersView) (Outcome, error) {
				return act(v, ctx, args[0])
			})
		},
	}
}
