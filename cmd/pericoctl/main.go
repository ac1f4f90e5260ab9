// Copyright 2026 © The Perico Authors
// SPDX-License-Identifier: Apache-2.0

// Command pericoctl is the operator CLI for talking to a running perico
// agent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jllopis/perico/pkg/openfloor"
	"github.com/jllopis/perico/pkg/openfloor/client"
	"github.com/jllopis/perico/pkg/transcript"
)

const defaultAgentURL = "http://localhost:8080"

type globalFlags struct {
	AgentURL string
	Sender   string
	Timeout  time.Duration
	JSON     bool
	Help     bool
}

func main() {
	global, args, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		fatal(err)
	}
	if global.Help || len(args) == 0 {
		printUsage()
		if len(args) == 0 && !global.Help {
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), global.Timeout)
	defer cancel()

	command, rest := args[0], args[1:]
	switch command {
	case "say":
		err = runSay(ctx, global, rest)
	case "manifests":
		err = runManifests(ctx, global)
	case "health":
		err = runHealth(ctx, global)
	case "transcript":
		err = runTranscript(ctx, global, rest)
	default:
		err = fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		fatal(err)
	}
}

func parseGlobalFlags(args []string) (globalFlags, []string, error) {
	flags := flag.NewFlagSet("pericoctl", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	global := globalFlags{}
	flags.StringVar(&global.AgentURL, "agent", defaultAgentURL, "base URL of the agent")
	flags.StringVar(&global.Sender, "sender", string(client.DefaultSender), "sender identity URI")
	flags.DurationVar(&global.Timeout, "timeout", 10*time.Second, "request timeout")
	flags.BoolVar(&global.JSON, "json", false, "print raw JSON output")
	flags.BoolVar(&global.Help, "help", false, "show usage")
	if err := flags.Parse(args); err != nil {
		return global, nil, err
	}
	return global, flags.Args(), nil
}

func newClient(global globalFlags) *client.Client {
	return client.New(global.AgentURL,
		client.WithSender(openfloor.Identity(global.Sender)),
		client.WithTimeout(global.Timeout),
	)
}

func runSay(ctx context.Context, global globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: pericoctl say <text>")
	}
	reply, err := newClient(global).Say(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(map[string]string{"reply": reply})
	}
	fmt.Println(reply)
	return nil
}

func runManifests(ctx context.Context, global globalFlags) error {
	manifests, err := newClient(global).GetManifests(ctx)
	if err != nil {
		return err
	}
	if global.JSON {
		return printJSON(manifests)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SPEAKER URI\tNAME\tORGANIZATION\tCAPABILITIES")
	for _, m := range manifests {
		keyphrases := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			keyphrases = append(keyphrases, strings.Join(c.Keyphrases, ","))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			m.Identification.SpeakerURI,
			m.Identification.ConversationalName,
			m.Identification.Organization,
			strings.Join(keyphrases, "; "))
	}
	return w.Flush()
}

func runHealth(ctx context.Context, global globalFlags) error {
	endpoint := strings.TrimRight(global.AgentURL, "/") + "/healthz"
	body, err := getJSON(ctx, endpoint)
	if err != nil {
		return err
	}
	if global.JSON {
		fmt.Println(string(body))
		return nil
	}
	var health struct {
		Status string `json:"status"`
		Agent  string `json:"agent"`
	}
	if err := json.Unmarshal(body, &health); err != nil {
		return fmt.Errorf("decode health response: %w", err)
	}
	fmt.Printf("%s\t%s\n", health.Status, health.Agent)
	return nil
}

func runTranscript(ctx context.Context, global globalFlags, args []string) error {
	flags := flag.NewFlagSet("transcript", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	sender := flags.String("sender-filter", "", "filter by inbound sender")
	outcome := flags.String("outcome", "", "filter by outcome (ok, error)")
	limit := flags.Int("limit", 20, "maximum exchanges to list")
	if err := flags.Parse(args); err != nil {
		return err
	}

	query := url.Values{}
	if *sender != "" {
		query.Set("sender", *sender)
	}
	if *outcome != "" {
		query.Set("outcome", *outcome)
	}
	query.Set("limit", strconv.Itoa(*limit))
	endpoint := strings.TrimRight(global.AgentURL, "/") + "/transcript?" + query.Encode()

	body, err := getJSON(ctx, endpoint)
	if err != nil {
		return err
	}
	if global.JSON {
		fmt.Println(string(body))
		return nil
	}
	var exchanges []transcript.Exchange
	if err := json.Unmarshal(body, &exchanges); err != nil {
		return fmt.Errorf("decode transcript response: %w", err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECEIVED\tSENDER\tEVENTS\tOUTCOME")
	for _, e := range exchanges {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			e.ReceivedAt.Format(time.RFC3339), e.Sender, e.EventCount, e.Outcome)
	}
	return w.Flush()
}

func getJSON(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `pericoctl - operator CLI for a perico agent

Usage:
  pericoctl [flags] <command> [args]

Commands:
  say <text>   Send an utterance and print the spoken reply
  manifests    Fetch and print the agent's manifests
  health       Check agent liveness
  transcript   List recent exchanges (requires transcript enabled)

Flags:
  -agent    base URL of the agent (default ` + defaultAgentURL + `)
  -sender   sender identity URI
  -timeout  request timeout (default 10s)
  -json     print raw JSON output`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "pericoctl: %v\n", err)
	os.Exit(1)
}
