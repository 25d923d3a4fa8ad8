package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/recovery"
)

type recoverSummary struct {
	Protocol    string      `yaml:"protocol"`
	Session     string      `yaml:"session"`
	Key         *keySummary `yaml:"key"`
	Target      string      `yaml:"target"`
	Helpers     []string    `yaml:"helpers"`
	PublicShare string      `yaml:"public_share"`
	Recovered   bool        `yaml:"recovered"`
	Messages    int         `yaml:"messages"`
}

func newRecoverCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Run a distributed key generation, then recover the share of one party with two others",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := o.session()
			ids, configs, err := o.keygen(cmd.Context(), o.v.GetInt(flagParties), o.v.GetInt(flagThreshold), session)
			if err != nil {
				return err
			}

			if len(ids) < 3 {
				return fmt.Errorf("recover: need at least 3 parties, got %d", len(ids))
			}
			target := party.ID(o.v.GetString(flagTarget))
			if target == "" {
				target = ids[len(ids)-1]
			}
			if !ids.Contains(target) {
				return fmt.Errorf("recover: target %s: %w", target, party.ErrUnknownID)
			}
			helpers := party.NewIDSlice(ids.Remove(target)[:2])

			results, err := o.simulate(cmd.Context(), helpers, func(id party.ID) protocol.StartFunc {
				partner := helpers[0]
				if partner == id {
					partner = helpers[1]
				}
				return recovery.Start(configs[id], partner, target, []byte(session+"/recovery"))
			})
			if err != nil {
				return fmt.Errorf("recover: %w", err)
			}
			a, okA := results[helpers[0]].(*recovery.Result)
			b, okB := results[helpers[1]].(*recovery.Result)
			if !okA || !okB {
				return fmt.Errorf("recover: unexpected results %T, %T", results[helpers[0]], results[helpers[1]])
			}
			share, err := recovery.Combine(a, b)
			if err != nil {
				return err
			}
			restored, err := recovery.Restore(configs[helpers[0]], target, share)
			if err != nil {
				return err
			}

			key, err := summarize(ids, configs)
			if err != nil {
				return err
			}
			public, err := pointHex(restored.PublicPoint())
			if err != nil {
				return err
			}
			messages, err := o.messagesSent()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), &recoverSummary{
				Protocol:    "recover",
				Session:     session,
				Key:         key,
				Target:      string(target),
				Helpers:     []string{string(helpers[0]), string(helpers[1])},
				PublicShare: public,
				Recovered:   share.Equal(configs[target].PrivateShare),
				Messages:    messages,
			})
		},
	}
	cmd.Flags().String(flagTarget, "", "party whose share is recovered (last party if empty)")
	return cmd
}
