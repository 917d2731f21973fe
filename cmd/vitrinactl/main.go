// Command vitrinactl manages portfolio content over the admin API.
//
// Mutations are applied optimistically: the affected listing is printed
// with the change already in place, then the tool waits for the server
// round-trip and reports the confirmed (or reverted) state.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zanvidmar/vitrina/internal/model"
	"github.com/zanvidmar/vitrina/internal/mutate"
	"github.com/zanvidmar/vitrina/internal/notify"
)

func main() {
	fs := flag.NewFlagSet("vitrinactl", flag.ContinueOnError)

	var server string
	fs.StringVar(&server, "server", "http://localhost:8080", "")
	fs.StringVar(&server, "s", "http://localhost:8080", "")

	var token string
	fs.StringVar(&token, "token", os.Getenv("VITRINA_TOKEN"), "")
	fs.StringVar(&token, "t", os.Getenv("VITRINA_TOKEN"), "")

	fs.Usage = usage

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	client := &client{
		server: strings.TrimRight(server, "/"),
		token:  token,
		http:   &http.Client{Timeout: 30 * time.Second},
	}

	cmd, args := fs.Arg(0), fs.Args()[1:]

	var err error
	switch cmd {
	case "login":
		err = cmdLogin(client, args)
	case "list":
		err = cmdList(client, args)
	case "archive":
		err = cmdMutate(client, mutate.KindArchive, args)
	case "restore":
		err = cmdMutate(client, mutate.KindRestore, args)
	case "delete":
		err = cmdMutate(client, mutate.KindDelete, args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stdout, `Usage: vitrinactl [flags] <command> [args]

Commands:
  login <username>                 log in, print a token for VITRINA_TOKEN
  list <collection> [all]         list records (default: active only)
  archive <collection> <id...>     archive records
  restore <collection> <id...>     restore archived records
  delete <collection> <id...>      delete records permanently

Flags:
  -s, -server <url>   server base URL (default: http://localhost:8080)
  -t, -token <jwt>    API token (default: $VITRINA_TOKEN)
  -h, -help           show this help and exit
`)
}

// client is a thin wrapper over the admin JSON API. It implements
// mutate.Writer so a Mutator can drive the archive/restore/delete
// endpoints directly.
type client struct {
	server string
	token  string
	http   *http.Client
}

func (c *client) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.server+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *client) Archive(ctx context.Context, collection string, ids []int64) error {
	return c.do("POST", "/api/collections/"+collection+"/archive", map[string][]int64{"ids": ids}, nil)
}

func (c *client) Restore(ctx context.Context, collection string, ids []int64) error {
	return c.do("POST", "/api/collections/"+collection+"/restore", map[string][]int64{"ids": ids}, nil)
}

func (c *client) Delete(ctx context.Context, collection string, ids []int64) error {
	return c.do("DELETE", "/api/collections/"+collection, map[string][]int64{"ids": ids}, nil)
}

func (c *client) fetch(collection, archived string) ([]model.Record, error) {
	path := "/api/collections/" + collection
	if archived != "" {
		path += "?archived=" + archived
	}
	var records []model.Record
	if err := c.do("GET", path, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func cmdLogin(c *client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: vitrinactl login <username>")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	var password string
	if _, err := fmt.Scanln(&password); err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	var resp struct {
		Token string `json:"token"`
	}
	err := c.do("POST", "/api/auth/login", map[string]string{
		"username": args[0],
		"password": password,
	}, &resp)
	if err != nil {
		return err
	}

	fmt.Println(resp.Token)
	return nil
}

func cmdList(c *client, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: vitrinactl list <collection> [all]")
	}
	collection := args[0]
	if !model.ValidCollection(collection) {
		return fmt.Errorf("unknown collection %q (one of: %s)", collection, strings.Join(model.Collections(), ", "))
	}

	archived := ""
	if len(args) == 2 {
		if args[1] != "all" {
			return fmt.Errorf("usage: vitrinactl list <collection> [all]")
		}
		archived = "all"
	}

	records, err := c.fetch(collection, archived)
	if err != nil {
		return err
	}

	printRecords(records)
	return nil
}

// cmdMutate drives one archive/restore/delete through a Mutator: the
// projected listing is printed immediately, then the confirmed state
// after the server responds.
func cmdMutate(c *client, kind mutate.Kind, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: vitrinactl <archive|restore|delete> <collection> <id...>")
	}
	collection := args[0]
	if !model.ValidCollection(collection) {
		return fmt.Errorf("unknown collection %q (one of: %s)", collection, strings.Join(model.Collections(), ", "))
	}

	ids := make([]int64, 0, len(args)-1)
	for _, raw := range args[1:] {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", raw)
		}
		ids = append(ids, id)
	}

	base, err := c.fetch(collection, "all")
	if err != nil {
		return err
	}

	notifier := &notify.Writer{Out: os.Stdout, Err: os.Stderr}
	m := mutate.New[model.Record, *model.Record](collection, c, notifier, nil)
	m.SetBase(base)

	ctx := context.Background()
	switch kind {
	case mutate.KindArchive:
		m.BulkArchive(ctx, ids)
	case mutate.KindRestore:
		m.BulkRestore(ctx, ids)
	case mutate.KindDelete:
		m.BulkDelete(ctx, ids)
	}

	fmt.Println("Projected:")
	printRecords(m.List())

	m.Wait()

	fmt.Println()
	fmt.Println("Confirmed:")
	printRecords(m.List())
	return nil
}

func printRecords(records []model.Record) {
	if len(records) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, r := range records {
		state := "active"
		if r.IsArchived {
			state = "archived"
		}
		fmt.Printf("  %4d  %-8s  %s\n", r.ID, state, r.Title)
	}
}
