package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pbarbosa/finbot/internal/config"
	"github.com/pbarbosa/finbot/internal/dispatch"
	"github.com/pbarbosa/finbot/internal/flow"
	"github.com/pbarbosa/finbot/internal/llm"
	"github.com/pbarbosa/finbot/internal/state"
	"github.com/pbarbosa/finbot/internal/tui"
)

func chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Opens the conversational interface. Messages are classified and
answered exactly as they would be over the messaging transport; use
/anexar <file> to attach a receipt to the next message.`,
		RunE: runChat,
	}
	cmd.Flags().String("conversation", "local", "conversation id to chat as")
	_ = viper.BindPFlag("chat.conversation", cmd.Flags().Lookup("conversation"))
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return err
	}
	client, err := llm.NewClient(llmCfg)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	attachmentsDir, err := config.AttachmentsDir()
	if err != nil {
		return err
	}

	logger := slog.Default()
	dispatcher := dispatch.NewDispatcher(
		state.NewStore(),
		store,
		llm.NewAnalyzer(client, logger),
		llm.NewGenerator(client, logger),
		flow.NewController(store, logger),
		logger,
	)

	return tui.Run(tui.Config{
		Dispatcher:     dispatcher,
		ConversationID: viper.GetString("chat.conversation"),
		AttachmentsDir: attachmentsDir,
	})
}
