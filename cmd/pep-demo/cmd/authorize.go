package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/enricovianello/pep-go/cmd/pep-demo/config"
	"github.com/enricovianello/pep-go/pkg/pep"
	"github.com/enricovianello/pep-go/pkg/peplog"
	"github.com/enricovianello/pep-go/pkg/xacml"
)

var (
	authzSubjectID  string
	authzResourceID string
	authzActionID   string
)

var authorizeCmd = &cobra.Command{
	Use:   "authorize",
	Short: "Send a sample XACML request through a pep.Client and print the decision",
	RunE:  runAuthorize,
}

func init() {
	authorizeCmd.Flags().StringVar(&authzSubjectID, "subject", "alice", "subject identifier attribute value")
	authorizeCmd.Flags().StringVar(&authzResourceID, "resource", "/demo/resource", "resource identifier attribute value")
	authorizeCmd.Flags().StringVar(&authzActionID, "action", "read", "action identifier attribute value")
	rootCmd.AddCommand(authorizeCmd)
}

func loadConfig() *config.Config {
	if cfgPath == "" {
		return config.Default()
	}
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		fmt.Printf("failed to load config %q, falling back to defaults: %v\n", cfgPath, err)
		return config.Default()
	}
	if !cfg.IsComplete() {
		fmt.Println("config has no endpoints configured, falling back to defaults")
		return config.Default()
	}
	return cfg
}

func buildSampleRequest() *xacml.Request {
	req := xacml.NewRequest()
	req.AddSubject(xacml.Subject{
		Category:   "subject",
		Attributes: []xacml.Attribute{{ID: "urn:oasis:names:tc:xacml:1.0:subject:subject-id", Values: []string{authzSubjectID}}},
	})
	req.AddResource(xacml.Resource{
		Category:   "resource",
		Attributes: []xacml.Attribute{{ID: "urn:oasis:names:tc:xacml:1.0:resource:resource-id", Values: []string{authzResourceID}}},
	})
	req.SetAction(xacml.Action{
		Category:   "action",
		Attributes: []xacml.Attribute{{ID: "urn:oasis:names:tc:xacml:1.0:action:action-id", Values: []string{authzActionID}}},
	})
	return req
}

func runAuthorize(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	verbose, _ := cmd.Flags().GetBool("verbose")
	logLevel := peplog.ParseLevel(cfg.LogLevel)
	if verbose {
		logLevel = peplog.LevelDebug
	}

	handler := &loggingObligationHandler{}
	opts := []pep.Option{
		pep.WithTimeout(time.Duration(cfg.TimeoutMS) * time.Millisecond),
		pep.WithLogLevel(logLevel),
		pep.WithLogWriter(cmd.OutOrStdout()),
		pep.WithPIP(environmentStamperPIP{}),
		pep.WithObligationHandler(handler),
	}
	for _, ep := range cfg.Endpoints {
		opts = append(opts, pep.WithEndpoint(ep))
	}

	client, err := pep.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to build pep client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.TimeoutMS)*time.Millisecond)
	defer cancel()

	resp, err := client.Authorize(ctx, buildSampleRequest())
	if err != nil {
		return fmt.Errorf("authorize failed: %w", err)
	}

	for i, result := range resp.Results {
		fmt.Printf("result[%d]: decision=%s status=%s obligations=%d\n",
			i, result.Decision, result.Status.Code.Code, len(result.Obligations))
	}
	if len(handler.Seen) > 0 {
		fmt.Printf("obligations observed by handler: %v\n", handler.Seen)
	}
	return nil
}
