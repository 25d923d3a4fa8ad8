package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/dkg"
)

type refreshSummary struct {
	Protocol             string      `yaml:"protocol"`
	Session              string      `yaml:"session"`
	Key                  *keySummary `yaml:"key"`
	PublicKeyUnchanged   bool        `yaml:"public_key_unchanged"`
	PrivateSharesRotated bool        `yaml:"private_shares_rotated"`
	Messages             int         `yaml:"messages"`
}

func newRefreshCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Run a distributed key generation, then refresh the shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := o.session()
			ids, configs, err := o.keygen(cmd.Context(), o.v.GetInt(flagParties), o.v.GetInt(flagThreshold), session)
			if err != nil {
				return err
			}

			results, err := o.simulate(cmd.Context(), ids, func(id party.ID) protocol.StartFunc {
				return dkg.StartRefresh(configs[id], []byte(session+"/refresh"))
			})
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}
			refreshed, err := toConfigs(results)
			if err != nil {
				return fmt.Errorf("refresh: %w", err)
			}

			rotated := true
			for _, id := range ids {
				if refreshed[id].PrivateShare.Equal(configs[id].PrivateShare) {
					rotated = false
				}
				if err = refreshed[id].Validate(); err != nil {
					return fmt.Errorf("refresh: party %s: %w", id, err)
				}
			}

			key, err := summarize(ids, refreshed)
			if err != nil {
				return err
			}
			messages, err := o.messagesSent()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), &refreshSummary{
				Protocol:             "refresh",
				Session:              session,
				Key:                  key,
				PublicKeyUnchanged:   refreshed[ids[0]].PublicKey.Equal(configs[ids[0]].PublicKey),
				PrivateSharesRotated: rotated,
				Messages:             messages,
			})
		},
	}
}
