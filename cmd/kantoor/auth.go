package main

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/kantoor/internal/bank"
	"github.com/Veraticus/kantoor/internal/certs"
	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/config"
	"github.com/Veraticus/kantoor/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Connect kantoor to Google Sheets or a bank",
	}

	cmd.AddCommand(authSheetsCmd(), authBankCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	var clientID, clientSecret, listen string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authorize the Google Sheets export",
		Long: `Authorize the Google Sheets export with OAuth2.

Opens the Google consent page, waits for the callback on a local port and stores the
refresh token in the config file. The full token is kept next to it in sheets-token.json.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cli.NewPrinter(cmd.OutOrStdout(), config.OutputTable)

			oauth := sheets.OAuth2Config{
				ClientID:     firstNonEmpty(clientID, viper.GetString("sheets.client_id"), os.Getenv("GOOGLE_SHEETS_CLIENT_ID")),
				ClientSecret: firstNonEmpty(clientSecret, viper.GetString("sheets.client_secret"), os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")),
				TokenFile:    filepath.Join(config.Dir(), "sheets-token.json"),
				ListenAddr:   listen,
				Timeout:      timeout,
			}
			slog.Info("Starting Google Sheets authorization", "token_file", oauth.TokenFile)

			token, err := sheets.Authorize(cmd.Context(), oauth, func(url string) {
				out.Message(cli.FormatInfo("Open deze pagina om kantoor toegang te geven:"))
				out.Raw(url)
				openBrowser(url)
			})
			if err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}
			if token.RefreshToken == "" {
				return errors.New("google returned no refresh token; revoke the app's access and try again")
			}

			viper.Set("sheets.refresh_token", token.RefreshToken)
			if err := saveConfig(); err != nil {
				slog.Warn("Failed to update config file with refresh token", "error", err)
				out.Message(cli.FormatWarning("Zet dit zelf in config.yaml:"))
				out.Raw(fmt.Sprintf("sheets:\n  refresh_token: %q", token.RefreshToken))
				return nil
			}
			out.Success("Google Sheets gekoppeld")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID (overrides config)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (overrides config)")
	cmd.Flags().StringVar(&listen, "listen", "localhost:8080", "address of the local callback server")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for the consent")
	return cmd
}

func authBankCmd() *cobra.Command {
	var environment, listen string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Link a bank account through Plaid Link",
		Long: `Link a bank account through Plaid Link.

Starts a local web server with the Plaid Link page, exchanges the public token for an
access token and stores it as bank.plaid.access_token. In production the server runs
on HTTPS with a self-signed certificate, so expect a browser warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cli.NewPrinter(cmd.OutOrStdout(), config.OutputTable)

			plaidCfg := config.LoadPlaidConfig()
			if environment != "" {
				plaidCfg.Environment = environment
			}
			source, err := bank.NewPlaid(plaidCfg)
			if err != nil {
				return err
			}

			linkToken, err := source.CreateLinkToken(ctx, "kantoor-"+uuid.NewString())
			if err != nil {
				return err
			}

			results := make(chan linkResult, 1)
			errs := make(chan error, 1)

			mux := http.NewServeMux()
			mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				if err := linkPage.Execute(w, linkToken); err != nil {
					slog.Warn("Failed to render link page", "error", err)
				}
			})
			mux.HandleFunc("/exchange", func(w http.ResponseWriter, r *http.Request) {
				var req linkRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PublicToken == "" {
					writeLinkResponse(w, http.StatusBadRequest, "ongeldig verzoek")
					return
				}
				access, itemID, err := source.ExchangePublicToken(r.Context(), req.PublicToken)
				if err != nil {
					select {
					case errs <- err:
					default:
					}
					writeLinkResponse(w, http.StatusBadGateway, "token uitwisselen mislukt")
					return
				}
				select {
				case results <- linkResult{
					AccessToken: access,
					ItemID:      itemID,
					Institution: req.Metadata.Institution.Name,
					Accounts:    req.Metadata.Accounts,
				}:
				default:
				}
				writeLinkResponse(w, http.StatusOK, "")
			})

			listener, err := net.Listen("tcp", listen)
			if err != nil {
				return fmt.Errorf("failed to start link server: %w", err)
			}
			server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

			scheme := "http"
			if plaidCfg.Environment == bank.PlaidProduction {
				cert, err := certs.NewFileManager(filepath.Join(config.Dir(), "certs")).GetOrCreateCertificate()
				if err != nil {
					_ = listener.Close()
					return fmt.Errorf("failed to get certificate: %w", err)
				}
				server.TLSConfig = &tls.Config{
					Certificates: []tls.Certificate{cert},
					MinVersion:   tls.VersionTLS12,
				}
				scheme = "https"
			}

			go func() {
				var serveErr error
				if server.TLSConfig != nil {
					serveErr = server.ServeTLS(listener, "", "")
				} else {
					serveErr = server.Serve(listener)
				}
				if !errors.Is(serveErr, http.ErrServerClosed) {
					select {
					case errs <- fmt.Errorf("link server failed: %w", serveErr):
					default:
					}
				}
			}()
			defer func() { _ = server.Close() }()

			url := fmt.Sprintf("%s://%s", scheme, listener.Addr())
			if scheme == "https" {
				out.Message(cli.FormatWarning("De browser waarschuwt voor het lokale certificaat; kies 'Doorgaan naar localhost'."))
			}
			out.Message(cli.FormatInfo("Koppel je rekening via " + url))
			openBrowser(url)

			var result linkResult
			select {
			case result = <-results:
			case err := <-errs:
				return err
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(timeout):
				return fmt.Errorf("no account linked within %s", timeout)
			}

			slog.Info("Linked bank account", "institution", result.Institution, "item_id", result.ItemID, "accounts", len(result.Accounts))
			viper.Set("bank.plaid.access_token", result.AccessToken)
			viper.Set("bank.plaid.environment", plaidCfg.Environment)
			if err := saveConfig(); err != nil {
				slog.Warn("Failed to update config file with access token", "error", err)
				out.Message(cli.FormatWarning("Zet dit zelf in config.yaml:"))
				out.Raw(fmt.Sprintf("bank:\n  plaid:\n    access_token: %q", result.AccessToken))
				return nil
			}

			out.Success(fmt.Sprintf("%s gekoppeld", firstNonEmpty(result.Institution, "Bank")))
			for _, acc := range result.Accounts {
				out.Message(cli.SubtleStyle.Render(fmt.Sprintf("  %s (%s)", acc.Name, acc.Type)))
			}
			out.Message(cli.FormatInfo("Importeer transacties met 'kantoor expenses import-plaid'"))
			return nil
		},
	}

	cmd.Flags().StringVar(&environment, "env", "", "Plaid environment, sandbox or production (overrides config)")
	cmd.Flags().StringVar(&listen, "listen", "localhost:8080", "address of the local link server")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "how long to wait for the link")
	return cmd
}

type linkAccount struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type linkRequest struct {
	PublicToken string `json:"public_token"`
	Metadata    struct {
		Institution struct {
			Name string `json:"name"`
			ID   string `json:"institution_id"`
		} `json:"institution"`
		Accounts []linkAccount `json:"accounts"`
	} `json:"metadata"`
}

type linkResult struct {
	AccessToken string
	ItemID      string
	Institution string
	Accounts    []linkAccount
}

func writeLinkResponse(w http.ResponseWriter, status int, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"success": errMsg == ""}
	if errMsg != "" {
		body["error"] = errMsg
	}
	_ = json.NewEncoder(w).Encode(body)
}

var linkPage = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html lang="nl">
<head>
    <meta charset="utf-8">
    <title>Bankrekening koppelen - Kantoor</title>
    <script src="https://cdn.plaid.com/link/v2/stable/link-initialize.js"></script>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background-color: #f5f5f5; }
        .container { text-align: center; background: white; padding: 40px; border-radius: 8px;
                     box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        button { background-color: #1f6feb; color: white; padding: 12px 24px;
                 font-size: 16px; border: none; border-radius: 4px; cursor: pointer; }
        .error { color: #d32f2f; margin-top: 20px; }
        .success { color: #388e3c; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Bankrekening koppelen</h1>
        <p>Koppel je zakelijke rekening veilig via Plaid.</p>
        <button id="link-button">Rekening koppelen</button>
        <div id="message"></div>
    </div>
    <script>
    const message = document.getElementById('message');
    const handler = Plaid.create({
        token: {{.}},
        onSuccess: (public_token, metadata) => {
            message.innerHTML = '<div class="success">Bezig met koppelen...</div>';
            fetch('/exchange', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify({ public_token, metadata })
            })
            .then(r => r.json())
            .then(data => {
                message.innerHTML = data.success
                    ? '<div class="success">Gekoppeld. Je kunt dit venster sluiten.</div>'
                    : '<div class="error">' + (data.error || 'Koppelen mislukt') + '</div>';
            })
            .catch(err => { message.innerHTML = '<div class="error">Netwerkfout: ' + err + '</div>'; });
        },
        onExit: (err) => {
            if (err != null) {
                message.innerHTML = '<div class="error">Koppelen afgebroken.</div>';
            }
        }
    });
    document.getElementById('link-button').onclick = () => handler.open();
    </script>
</body>
</html>`))

// saveConfig writes the viper state back to the config file in use, or to config.yaml in
// the config directory when none was loaded.
func saveConfig() error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = filepath.Join(config.Dir(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o750); err != nil {
		return err
	}
	return viper.WriteConfigAs(configFile)
}

// openBrowser tries to open url in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
