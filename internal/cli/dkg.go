package cli

import (
	"github.com/spf13/cobra"
)

type dkgSummary struct {
	Protocol string      `yaml:"protocol"`
	Session  string      `yaml:"session"`
	Key      *keySummary `yaml:"key"`
	Messages int         `yaml:"messages"`
}

func newDKGCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dkg",
		Short: "Run a distributed key generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := o.session()
			ids, configs, err := o.keygen(cmd.Context(), o.v.GetInt(flagParties), o.v.GetInt(flagThreshold), session)
			if err != nil {
				return err
			}
			key, err := summarize(ids, configs)
			if err != nil {
				return err
			}
			messages, err := o.messagesSent()
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), &dkgSummary{
				Protocol: "dkg",
				Session:  session,
				Key:      key,
				Messages: messages,
			})
		},
	}
}
