package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/bancoagil/atende/agent/agents/credit"
	"github.com/bancoagil/atende/agent/agents/exchange"
	"github.com/bancoagil/atende/agent/agents/interview"
	"github.com/bancoagil/atende/agent/agents/triage"
	"github.com/bancoagil/atende/agent/contract"
	"github.com/bancoagil/atende/agent/gateway"
	"github.com/bancoagil/atende/agent/interpret"
	"github.com/bancoagil/atende/agent/orchestrator"
	"github.com/bancoagil/atende/agent/quotes"
	"github.com/bancoagil/atende/agent/session"
	"github.com/bancoagil/atende/agent/store"
	awesomeapix "github.com/bancoagil/atende/pkg/awesomeapi"
	configx "github.com/bancoagil/atende/pkg/config"
	_ "github.com/bancoagil/atende/pkg/logger/autoload"
	openrouterx "github.com/bancoagil/atende/pkg/openrouter"
)

var debugTrace bool

func main() {
	root := &cobra.Command{
		Use:           "atende",
		Short:         "Banco Ágil virtual customer service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	chat := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive conversation on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd.Context())
		},
	}
	chat.Flags().BoolVar(&debugTrace, "debug", false, "print the inference trace after each reply")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create the database schema and load the demo customers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd.Context())
		},
	}

	root.AddCommand(chat, seed)
	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func runChat(ctx context.Context) error {
	orCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	orClient, err := openrouterx.NewClient(*orCfg)
	if err != nil {
		return err
	}

	gw, err := gateway.New(gateway.NewRegistry(), gateway.Backends(orClient, orCfg.Models)...)
	if err != nil {
		return err
	}
	interp := interpret.New(gw)

	directory, requests, tiers, closeStore, err := buildStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	quoteProvider, err := quotes.New(awesomeapix.MustNew(*configx.MustNew[awesomeapix.Config]("AWESOMEAPI")))
	if err != nil {
		return err
	}

	triageHandler, err := triage.New(interp, directory)
	if err != nil {
		return err
	}
	creditHandler, err := credit.New(interp, directory, requests, tiers)
	if err != nil {
		return err
	}
	interviewHandler, err := interview.New(interp, directory, tiers)
	if err != nil {
		return err
	}
	exchangeHandler, err := exchange.New(interp, quoteProvider)
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(map[session.AgentType]contract.Handler{
		session.AgentTriage:    triageHandler,
		session.AgentCredit:    creditHandler,
		session.AgentInterview: interviewHandler,
		session.AgentExchange:  exchangeHandler,
	})
	if err != nil {
		return err
	}

	sess := session.New(ulid.Make().String())
	log.Info().Str("session", sess.ID).Msg("conversation started")

	fmt.Println("Banco Ágil — atendimento virtual. Digite sua mensagem (ctrl+d para sair).")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("Você: ")
		if !scanner.Scan() {
			break
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}

		reply, err := orch.Dispatch(ctx, sess, utterance)
		if err != nil {
			return err
		}
		fmt.Println("Atendente:", reply)
		if debugTrace {
			printTrace(sess)
		}
		if sess.Active == session.AgentTerminated {
			break
		}
	}
	return scanner.Err()
}

func printTrace(sess *session.Session) {
	for i, call := range sess.DebugTrace {
		status := "ok"
		if call.Err != "" {
			status = call.Err
		}
		fmt.Printf("  [trace %d] backend=%s status=%s\n", i+1, call.Backend, status)
	}
}

func buildStore(ctx context.Context) (contract.CustomerDirectory, contract.RequestLog, contract.TierSource, func(), error) {
	dbCfg := store.MustNewDBConfig("DATABASE")
	if dbCfg.DSN == "" {
		log.Info().Msg("no database configured, using seeded in-memory store")
		mem := store.NewSeededMemory()
		return mem, mem, mem, func() {}, nil
	}

	pg, err := store.NewPostgres(dbCfg.DSN)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if err := pg.Init(ctx); err != nil {
		pg.Close()
		return nil, nil, nil, nil, err
	}
	return pg, pg, pg, func() { pg.Close() }, nil
}

func runSeed(ctx context.Context) error {
	dbCfg := store.MustNewDBConfig("DATABASE")
	if dbCfg.DSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for seeding")
	}

	pg, err := store.NewPostgres(dbCfg.DSN)
	if err != nil {
		return err
	}
	defer pg.Close()

	if err := pg.Init(ctx); err != nil {
		return err
	}
	if err := pg.Seed(ctx, store.SeedCustomers()); err != nil {
		return err
	}
	log.Info().Int("customers", len(store.SeedCustomers())).Msg("database seeded")
	return nil
}
