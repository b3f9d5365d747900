package agentcmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/relaywarp/relaywarp/internal/domain/model"
)

// ruleImportFile is the YAML shape "agent rules import" reads: the
// three rule collections keyed by the same names the Rule REST surface
// exposes, so a developer's checked-in rule set maps 1:1 onto it.
type ruleImportFile struct {
	Mock    []model.MockRule    `yaml:"mock"`
	Chaos   []model.ChaosRule   `yaml:"chaos"`
	Routing []model.RoutingRule `yaml:"routing"`
}

// rulesCmd groups rule-management subcommands.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "manage chaos/mock/routing rules on a running agent",
}

var rulesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "bulk-load chaos/mock/routing rules from a YAML file",
	Long: `import reads a YAML file of mock/chaos/routing rules and POSTs each
one to a running agent's Rule REST surface at AdminAddr. It is additive
tooling for developers who keep rule sets in version control; it does
not change the core pipeline semantics.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importRules(args[0])
	},
}

func init() {
	rulesCmd.AddCommand(rulesImportCmd)
}

func importRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("rules import: read %s: %w", path, err)
	}

	// Decode through a generic map and JSON so rule fields are read under
	// the camelCase names the Rule REST surface uses; yaml.v3 on its own
	// only matches lowercased Go field names.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("rules import: parse %s: %w", path, err)
	}
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("rules import: parse %s: %w", path, err)
	}
	var file ruleImportFile
	if err := json.Unmarshal(asJSON, &file); err != nil {
		return fmt.Errorf("rules import: parse %s: %w", path, err)
	}

	base := "http://" + Container.Config.AdminAddr
	client := &http.Client{Timeout: 10 * time.Second}

	for _, rule := range file.Mock {
		if err := postRule(client, base+"/rules/mock", rule); err != nil {
			return fmt.Errorf("rules import: mock rule %q: %w", rule.Name, err)
		}
	}
	for _, rule := range file.Chaos {
		if err := postRule(client, base+"/rules/chaos", rule); err != nil {
			return fmt.Errorf("rules import: chaos rule %q: %w", rule.Name, err)
		}
	}
	for _, rule := range file.Routing {
		if err := postRule(client, base+"/rules/routing", rule); err != nil {
			return fmt.Errorf("rules import: routing rule %q: %w", rule.Name, err)
		}
	}

	Container.Logger.Info("imported %d mock, %d chaos, %d routing rules from %s",
		len(file.Mock), len(file.Chaos), len(file.Routing), path)
	return nil
}

func postRule(client *http.Client, url string, rule interface{}) error {
	body, err := json.Marshal(rule)
	if err != nil {
		return err
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
