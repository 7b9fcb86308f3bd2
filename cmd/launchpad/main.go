package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"launchpad/config"
	"launchpad/core/types"
	"launchpad/crypto"
	"launchpad/node"
)

const defaultConfig = "./config.toml"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = runStart(os.Args[2:])
	case "address":
		err = runAddress(os.Args[2:])
	case "keygen":
		err = runKeygen(os.Args[2:])
	case "query":
		err = runQuery(os.Args[2:])
	case "execute":
		err = runExecute(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: launchpad <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  start     open the data dir, apply genesis and wait for a signal")
	fmt.Fprintln(os.Stderr, "  address   print the address a creator and label deploy to")
	fmt.Fprintln(os.Stderr, "  keygen    create an account key for genesis owners and callers")
	fmt.Fprintln(os.Stderr, "  query     run a contract query and print the JSON result")
	fmt.Fprintln(os.Stderr, "  execute   run a contract message as the given caller")
}

func openNode(ctx context.Context, path string) (*node.Node, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return node.New(ctx, cfg)
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := openNode(ctx, *configPath)
	if err != nil {
		return err
	}
	for _, inst := range n.Host().Instances() {
		n.Logger().Info("contract",
			slog.String("kind", inst.Kind),
			slog.String("label", inst.Label),
			slog.String("contract", inst.Address.String()))
	}
	<-ctx.Done()
	n.Logger().Info("shutting down")
	return n.Close()
}

func runAddress(args []string) error {
	fs := flag.NewFlagSet("address", flag.ExitOnError)
	creator := fs.String("creator", "", "Creator address")
	label := fs.String("label", "", "Instance label")
	prefix := fs.String("prefix", string(crypto.DefaultPrefix), "Address prefix")
	fs.Parse(args)

	if err := crypto.SetAddressPrefix(crypto.AddressPrefix(*prefix)); err != nil {
		return err
	}
	from, err := crypto.DecodeAddress(*creator)
	if err != nil {
		return fmt.Errorf("creator: %w", err)
	}
	if strings.TrimSpace(*label) == "" {
		return fmt.Errorf("label required")
	}
	fmt.Println(crypto.ContractAddress(from, strings.TrimSpace(*label)).String())
	return nil
}

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	prefix := fs.String("prefix", string(crypto.DefaultPrefix), "Address prefix")
	from := fs.String("from", "", "Existing hex private key to derive the address of")
	fs.Parse(args)

	if err := crypto.SetAddressPrefix(crypto.AddressPrefix(*prefix)); err != nil {
		return err
	}
	var (
		key *crypto.Key
		err error
	)
	if strings.TrimSpace(*from) != "" {
		key, err = crypto.KeyFromHex(*from)
	} else {
		key, err = crypto.NewKey()
	}
	if err != nil {
		return err
	}
	fmt.Printf("address: %s\n", key.Address())
	fmt.Printf("private_key: %s\n", key.Hex())
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	contract := fs.String("contract", "", "Contract address")
	msg := fs.String("msg", "", "JSON query message")
	fs.Parse(args)

	ctx := context.Background()
	n, err := openNode(ctx, *configPath)
	if err != nil {
		return err
	}
	defer n.Close()

	addr, err := crypto.DecodeAddress(*contract)
	if err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	out, err := n.Host().Query(ctx, addr, json.RawMessage(*msg))
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runExecute(args []string) error {
	fs := flag.NewFlagSet("execute", flag.ExitOnError)
	configPath := fs.String("config", defaultConfig, "Path to the config file")
	contract := fs.String("contract", "", "Contract address")
	caller := fs.String("caller", "", "Caller address")
	msg := fs.String("msg", "", "JSON execute message")
	funds := fs.String("funds", "", "Attached funds, e.g. 100ulaunch,5uatom")
	fs.Parse(args)

	ctx := context.Background()
	n, err := openNode(ctx, *configPath)
	if err != nil {
		return err
	}
	defer n.Close()

	addr, err := crypto.DecodeAddress(*contract)
	if err != nil {
		return fmt.Errorf("contract: %w", err)
	}
	from, err := crypto.DecodeAddress(*caller)
	if err != nil {
		return fmt.Errorf("caller: %w", err)
	}
	coins, err := parseFunds(*funds)
	if err != nil {
		return err
	}
	res, err := n.Host().Execute(ctx, addr, from, coins, json.RawMessage(*msg))
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseFunds reads "100ulaunch,5uatom".
func parseFunds(raw string) (types.Coins, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var coins types.Coins
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		i := 0
		for i < len(part) && part[i] >= '0' && part[i] <= '9' {
			i++
		}
		amount, ok := new(big.Int).SetString(part[:i], 10)
		if i == 0 || !ok || i == len(part) {
			return nil, fmt.Errorf("invalid coin %q", part)
		}
		coins = append(coins, types.Coin{Denom: part[i:], Amount: amount})
	}
	if err := coins.Validate(); err != nil {
		return nil, err
	}
	return coins, nil
}
