package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/taurusgroup/threshold-ecdsa/internal/memnet"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/dkg"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var group = curve.Secp256k1{}

// simulate runs one handler per party in ids, all connected to the same in-memory network,
// and returns the result of each party.
func (o *options) simulate(ctx context.Context, ids party.IDSlice, start func(id party.ID) protocol.StartFunc) (map[party.ID]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, o.v.GetDuration(flagTimeout))
	defer cancel()

	network := memnet.New(ids)
	results := make(map[party.ID]interface{}, len(ids))
	var mtx sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			h, err := protocol.NewHandler(start(id),
				protocol.WithLogger(o.log),
				protocol.WithMetrics(o.metrics))
			if err != nil {
				return fmt.Errorf("party %s: %w", id, err)
			}
			result, err := protocol.Run(ctx, h, network.Endpoint(id))
			if err != nil {
				return fmt.Errorf("party %s: %w", id, err)
			}
			mtx.Lock()
			results[id] = result
			mtx.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// keygen runs the DKG between n parties and checks that they agree on the public key.
func (o *options) keygen(ctx context.Context, n, threshold int, session string) (party.IDSlice, map[party.ID]*dkg.Config, error) {
	ids, parties := localParties(n)
	cfg := party.SessionConfig{
		Group:     group,
		Threshold: threshold,
		SessionID: []byte(session),
		Pool:      o.pool,
	}
	results, err := o.simulate(ctx, ids, func(id party.ID) protocol.StartFunc {
		return dkg.Start(cfg, id, parties, nil)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: %w", err)
	}
	configs, err := toConfigs(results)
	if err != nil {
		return nil, nil, fmt.Errorf("dkg: %w", err)
	}
	return ids, configs, nil
}

// localParties names the simulated parties a, b, c, … and gives them the indices 1, 2, 3, ….
func localParties(n int) (party.IDSlice, []party.Party) {
	ids := make([]party.ID, n)
	for i := range ids {
		ids[i] = party.ID(strings.Repeat("a", i/26) + string(rune('a'+i%26)))
	}
	sorted := party.NewIDSlice(ids)
	parties := make([]party.Party, n)
	for i, id := range sorted {
		parties[i] = party.Party{ID: id, Index: curve.ScalarFromUint(group, uint64(i+1))}
	}
	return sorted, parties
}

func toConfigs(results map[party.ID]interface{}) (map[party.ID]*dkg.Config, error) {
	configs := make(map[party.ID]*dkg.Config, len(results))
	var publicKey curve.Point
	for id, r := range results {
		c, ok := r.(*dkg.Config)
		if !ok {
			return nil, fmt.Errorf("party %s: unexpected result %T", id, r)
		}
		if publicKey == nil {
			publicKey = c.PublicKey
		} else if !publicKey.Equal(c.PublicKey) {
			return nil, fmt.Errorf("party %s: public key differs from the other parties", id)
		}
		configs[id] = c
	}
	return configs, nil
}

// messagesSent returns the number of messages emitted by all handlers so far.
func (o *options) messagesSent() (int, error) {
	families, err := o.registry.Gather()
	if err != nil {
		return 0, fmt.Errorf("gather metrics: %w", err)
	}
	total := 0
	for _, family := range families {
		if family.GetName() != "mpc_protocol_messages_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "direction" && label.GetValue() == "out" {
					total += int(m.GetCounter().GetValue())
				}
			}
		}
	}
	return total, nil
}

type keySummary struct {
	Threshold int            `yaml:"threshold"`
	PublicKey string         `yaml:"public_key"`
	Address   string         `yaml:"address"`
	ChainKey  string         `yaml:"chain_key"`
	Parties   []partySummary `yaml:"parties"`
}

type partySummary struct {
	ID          string `yaml:"id"`
	PublicShare string `yaml:"public_share"`
}

func summarize(ids party.IDSlice, configs map[party.ID]*dkg.Config) (*keySummary, error) {
	c := configs[ids[0]]
	publicKey, err := pointHex(c.PublicKey)
	if err != nil {
		return nil, err
	}
	address, err := c.Address()
	if err != nil {
		return nil, err
	}
	s := &keySummary{
		Threshold: c.Threshold,
		PublicKey: publicKey,
		Address:   address,
		ChainKey:  c.ChainKey.String(),
		Parties:   make([]partySummary, 0, len(ids)),
	}
	for _, id := range ids {
		share, err := pointHex(c.PublicShares.Points[id])
		if err != nil {
			return nil, err
		}
		s.Parties = append(s.Parties, partySummary{ID: string(id), PublicShare: share})
	}
	return s, nil
}

func pointHex(p curve.Point) (string, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encode point: %w", err)
	}
	return hex.EncodeToString(data), nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	return enc.Close()
}
