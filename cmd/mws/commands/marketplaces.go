package commands

import (
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/mws/internal/endpoints"
	"github.com/fivetwenty-io/mws/pkg/mws"
)

// MarketplaceInfo describes one marketplace.
type MarketplaceInfo struct {
	ID     string `json:"id"     yaml:"id"`
	Region string `json:"region" yaml:"region"`
	Host   string `json:"host"   yaml:"host"`
}

// NewMarketplacesCommand lists the known marketplaces and their hosts.
func NewMarketplacesCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "marketplaces",
		Aliases: []string{"mp"},
		Short:   "List marketplaces",
		Long:    "List the known marketplace ids with their region and service host",
		RunE: func(cmd *cobra.Command, args []string) error {
			regions := make(map[string]string)
			for region, ids := range mws.Regions {
				for _, id := range ids {
					regions[id] = region
				}
			}

			infos := make([]MarketplaceInfo, 0, len(regions))

			for _, id := range mws.MarketplaceIDs() {
				host, _ := mws.MarketplaceHost(id)
				infos = append(infos, MarketplaceInfo{ID: id, Region: regions[id], Host: host})
			}

			sort.SliceStable(infos, func(i, j int) bool { return infos[i].Region < infos[j].Region })

			return writeOutput(cmd.OutOrStdout(), infos, func(table *tablewriter.Table) {
				table.Header("Marketplace", "Region", "Host")

				for _, info := range infos {
					_ = table.Append(info.ID, info.Region, info.Host)
				}
			})
		},
	}
}

// OperationInfo describes one entry of the operation table.
type OperationInfo struct {
	Name             string `json:"name"                        yaml:"name"`
	Path             string `json:"path"                        yaml:"path"`
	Version          string `json:"version"                     yaml:"version"`
	RecoveryInterval string `json:"recovery_interval,omitempty" yaml:"recovery_interval,omitempty"`
	Paginated        bool   `json:"paginated"                   yaml:"paginated"`
}

// NewOperationsCommand lists the operations the client can call.
func NewOperationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "operations",
		Aliases: []string{"ops"},
		Short:   "List remote operations",
		Long:    "List every operation in the built-in operation table with its path and version",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := endpoints.Default()
			names := registry.Names()
			infos := make([]OperationInfo, 0, len(names))

			for _, name := range names {
				descriptor, err := registry.Resolve(name)
				if err != nil {
					return err //nolint:wrapcheck // names come from the registry itself
				}

				info := OperationInfo{
					Name:      name,
					Path:      descriptor.Path,
					Version:   descriptor.Version,
					Paginated: descriptor.ResultItemKey != "",
				}
				if descriptor.RecoveryInterval > 0 {
					info.RecoveryInterval = descriptor.RecoveryInterval.String()
				}

				infos = append(infos, info)
			}

			return writeOutput(cmd.OutOrStdout(), infos, func(table *tablewriter.Table) {
				table.Header("Operation", "Path", "Version", "Recovery", "Paginated")

				for _, info := range infos {
					_ = table.Append(info.Name, info.Path, info.Version, valueOrNA(info.RecoveryInterval), yesNo(info.Paginated))
				}
			})
		},
	}
}
