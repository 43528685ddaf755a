// storefrontctl - storefront API smoke test tool
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"storefront/internal/billing"
	"storefront/internal/session"
)

var client = &http.Client{Timeout: 30 * time.Second}

// Global flags (apply to all commands)
var (
	serverURL string
	quiet     bool
	noColor   bool
	verbose   bool

	// Session flags build the Storefront-Session header
	sessionID   string
	authorized  bool
	pwdOutdated bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen, colorYellow = "", "", "", ""
	colorBlue, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "stores":
		runStores(args)
	case "money":
		runMoney(args)
	case "compose":
		runCompose(args)
	case "billing":
		runBilling(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `storefrontctl - storefront API smoke test tool

Usage:
  storefrontctl <command> [options]

Commands:
  stores    List stores, or show one store's formatting rules
  money     Format an amount the way a store displays prices
  compose   Compose the page for a storefront path
  billing   Validate a billing address for a store

Examples:
  # List stores
  storefrontctl stores -server http://localhost:8080

  # Formatting rules of the Indonesian store
  storefrontctl stores -store id2

  # Format a price
  storefrontctl money -store ph -value 1299.5 -currency PHP

  # Compose the cart page as a signed-in shopper
  storefrontctl compose -path /ph/en/cart -sid 3f1c -authorized

  # Validate a billing address
  storefrontctl billing -store ph -country PH -region "Metro Manila" -city Makati

Run 'storefrontctl <command> -h' for command-specific options.
`)
}

// commonFlags registers the flags every command shares.
func commonFlags(fs *flag.FlagSet) {
	fs.StringVar(&serverURL, "server", "http://localhost:8080", "Storefront base URL")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the key result")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")
}

func parseFlags(fs *flag.FlagSet, usage string, args []string) {
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storefrontctl %s\n\nOptions:\n", usage)
		fs.PrintDefaults()
	}
	fs.Parse(args)
	if noColor {
		disableColors()
	}
}

// =============================================================================
// STORES COMMAND
// =============================================================================

func runStores(args []string) {
	fs := flag.NewFlagSet("stores", flag.ExitOnError)
	commonFlags(fs)
	var code string
	fs.StringVar(&code, "store", "", "Store code; shows formatting rules when set")
	parseFlags(fs, "stores [-store CODE] [options]", args)

	if code != "" {
		resp, err := doRequest("GET", "/api/stores/"+url.PathEscape(code)+"/formatting", nil)
		if err != nil {
			fatal("Failed to get formatting: %v", err)
		}
		market, _ := resp["market"].(string)
		if quiet {
			fmt.Println(market)
			return
		}
		printSuccess("Formatting resolved")
		fmt.Printf("  Market: %s%s%s\n", colorCyan, market, colorReset)
		if loc, ok := resp["locale"].(string); ok {
			fmt.Printf("  Locale: %s\n", loc)
		}
		return
	}

	resp, err := doRequest("GET", "/api/stores", nil)
	if err != nil {
		fatal("Failed to list stores: %v", err)
	}
	stores, _ := resp["stores"].([]interface{})
	for _, s := range stores {
		st, ok := s.(map[string]interface{})
		if !ok {
			continue
		}
		if quiet {
			fmt.Println(st["code"])
			continue
		}
		fmt.Printf("  - %s%v%s %v (%v)\n", colorCyan, st["code"], colorReset, st["base_name"], st["market"])
	}
}

// =============================================================================
// MONEY COMMAND
// =============================================================================

func runMoney(args []string) {
	fs := flag.NewFlagSet("money", flag.ExitOnError)
	commonFlags(fs)
	var code, currency, format string
	var value, qty float64
	var negative bool
	fs.StringVar(&code, "store", "ph", "Store code")
	fs.Float64Var(&value, "value", 0, "Amount in major currency units")
	fs.StringVar(&currency, "currency", "", "ISO 4217 currency code (defaults to the store currency)")
	fs.Float64Var(&qty, "qty", 0, "Multiply the amount by this quantity")
	fs.StringVar(&format, "format", "", "Named number format: money or integer")
	fs.BoolVar(&negative, "negative", false, "Render with a leading minus sign")
	parseFlags(fs, "money -value N [options]", args)

	reqBody := map[string]interface{}{
		"store": code,
		"money": map[string]interface{}{"value": value, "currency": currency},
		"options": map[string]interface{}{
			"is_negative": negative,
			"qty":         qty,
			"format":      format,
		},
	}

	resp, err := doRequest("POST", "/api/format/money", reqBody)
	if err != nil {
		fatal("Failed to format money: %v", err)
	}

	formatted, _ := resp["formatted"].(string)
	if quiet {
		fmt.Println(formatted)
		return
	}
	printSuccess("Formatted")
	fmt.Printf("  %s%s%s\n", colorGreen, formatted, colorReset)
}

// =============================================================================
// COMPOSE COMMAND
// =============================================================================

func runCompose(args []string) {
	fs := flag.NewFlagSet("compose", flag.ExitOnError)
	commonFlags(fs)
	var path string
	fs.StringVar(&path, "path", "", "Storefront path including the store base, e.g. /ph/en/cart (required)")
	fs.StringVar(&sessionID, "sid", "", "Shopper session id")
	fs.BoolVar(&authorized, "authorized", false, "Shopper is signed in")
	fs.BoolVar(&pwdOutdated, "password-outdated", false, "Shopper must update their password")
	parseFlags(fs, "compose -path PATH [options]", args)

	if path == "" {
		fs.Usage()
		os.Exit(1)
	}

	resp, err := doRequest("GET", "/compose/"+strings.TrimPrefix(path, "/"), nil)
	if err != nil {
		fatal("Failed to compose page: %v", err)
	}

	kind, _ := resp["kind"].(string)
	if quiet {
		fmt.Println(kind)
		return
	}
	printSuccess("Page composed")
	fmt.Printf("  Store: %s%v%s\n", colorCyan, resp["store"], colorReset)
	fmt.Printf("  Kind: %s%s%s\n", colorCyan, kind, colorReset)
	if redirect, ok := resp["redirect"].(map[string]interface{}); ok {
		printWarning("Redirects to %v (%v)", redirect["to"], redirect["code"])
	}
	if overlays, ok := resp["overlays"].([]interface{}); ok && len(overlays) > 0 {
		fmt.Printf("  %sOverlays:%s\n", colorYellow, colorReset)
		for _, o := range overlays {
			if om, ok := o.(map[string]interface{}); ok {
				fmt.Printf("    - %v\n", om["kind"])
			}
		}
	}
}

// =============================================================================
// BILLING COMMAND
// =============================================================================

func runBilling(args []string) {
	fs := flag.NewFlagSet("billing", flag.ExitOnError)
	commonFlags(fs)
	var code, street string
	addr := billing.Address{}
	fs.StringVar(&code, "store", "ph", "Store code")
	fs.StringVar(&addr.Firstname, "firstname", "Juan", "First name")
	fs.StringVar(&addr.Lastname, "lastname", "Dela Cruz", "Last name")
	fs.StringVar(&addr.Telephone, "telephone", "09171234567", "Telephone")
	fs.StringVar(&street, "street", "1 Ayala Ave", "Street lines separated by |")
	fs.StringVar(&addr.CountryCode, "country", "PH", "Country code")
	fs.StringVar(&addr.Region, "region", "", "Region")
	fs.StringVar(&addr.City, "city", "", "City")
	fs.StringVar(&addr.District, "district", "", "District")
	fs.StringVar(&addr.Postcode, "postcode", "1226", "Postcode")
	parseFlags(fs, "billing -store CODE [options]", args)

	if street != "" {
		addr.Street = strings.Split(street, "|")
	}

	resp, err := doRequest("POST", "/api/billing-address/validate", map[string]interface{}{
		"store":   code,
		"address": addr,
	})
	if err != nil {
		fatal("Failed to validate address: %v", err)
	}

	valid, _ := resp["valid"].(bool)
	if quiet {
		fmt.Println(strconv.FormatBool(valid))
		return
	}
	if valid {
		printSuccess("Address is valid")
		return
	}
	printWarning("Address is invalid")
	if fields, ok := resp["fields"].(map[string]interface{}); ok {
		for name, msg := range fields {
			printError("%s: %v", name, msg)
		}
	}
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string, body interface{}) (map[string]interface{}, error) {
	var reqBody io.Reader
	var reqJSON []byte

	if body != nil {
		var err error
		reqJSON, err = json.MarshalIndent(body, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(reqJSON)
	}

	req, err := http.NewRequest(method, serverURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if sessionID != "" || authorized {
		header, err := session.Format(session.State{
			ID:               sessionID,
			Authorized:       authorized,
			PasswordOutdated: pwdOutdated,
		})
		if err != nil {
			return nil, fmt.Errorf("encoding session: %w", err)
		}
		req.Header.Set(session.Header, header)
	}

	if !quiet {
		printRequest(method, path, reqJSON)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet {
		printResponse(resp.StatusCode, respBody, duration)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	// Field failures still carry a usable body
	if resp.StatusCode >= 400 {
		if _, ok := result["fields"]; ok && resp.StatusCode == http.StatusUnprocessableEntity {
			return result, nil
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return result, nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string, body []byte) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
	if body != nil {
		printJSON(body, "  ")
	}
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printWarning(format string, args ...interface{}) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, fmt.Sprintf(format, args...), colorReset)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
