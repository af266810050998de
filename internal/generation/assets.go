// internal/generation/assets.go
package generation

import (
	"fmt"

	"connectorgen/internal/common/errors"
)

// OperationKind names one generation operation.
type OperationKind string

const (
	OpSearch           OperationKind = "search"
	OpCreate           OperationKind = "create"
	OpUpdate           OperationKind = "update"
	OpDelete           OperationKind = "delete"
	OpRelation         OperationKind = "relation"
	OpNativeSchema     OperationKind = "native-schema"
	OpAttributeMapping OperationKind = "attribute-mapping"
)

// Protocol selects which prompt and documentation variant an operation uses.
type Protocol string

const (
	ProtocolREST Protocol = "REST"
	ProtocolSCIM Protocol = "SCIM"
)

var protocolOperations = []OperationKind{OpSearch, OpCreate, OpUpdate, OpDelete}
var agnosticOperations = []OperationKind{OpRelation, OpNativeSchema, OpAttributeMapping}
var protocols = []Protocol{ProtocolREST, ProtocolSCIM}

// Assets points at the prompt pair and documentation resource for one
// operation, relative to the prompt and docs roots.
type Assets struct {
	SystemPromptPath string
	UserPromptPath   string
	DocsResourcePath string
}

type assetKey struct {
	Op       OperationKind
	Protocol Protocol
}

// protocolAssets is the fixed (operation, protocol) dispatch table. Rows
// are data, not branching logic; NewAssetTable verifies the table covers
// every pair so a gap is caught at construction, not at call time.
var protocolAssets = map[assetKey]Assets{
	{OpSearch, ProtocolREST}: {
		SystemPromptPath: "rest/search_system.txt",
		UserPromptPath:   "rest/search_user.txt",
		DocsResourcePath: "rest/search.md",
	},
	{OpCreate, ProtocolREST}: {
		SystemPromptPath: "rest/create_system.txt",
		UserPromptPath:   "rest/create_user.txt",
		DocsResourcePath: "rest/create.md",
	},
	{OpUpdate, ProtocolREST}: {
		SystemPromptPath: "rest/update_system.txt",
		UserPromptPath:   "rest/update_user.txt",
		DocsResourcePath: "rest/update.md",
	},
	{OpDelete, ProtocolREST}: {
		SystemPromptPath: "rest/delete_system.txt",
		UserPromptPath:   "rest/delete_user.txt",
		DocsResourcePath: "rest/delete.md",
	},
	{OpSearch, ProtocolSCIM}: {
		SystemPromptPath: "scim/search_system.txt",
		UserPromptPath:   "scim/search_user.txt",
		DocsResourcePath: "scim/search.md",
	},
	{OpCreate, ProtocolSCIM}: {
		SystemPromptPath: "scim/create_system.txt",
		UserPromptPath:   "scim/create_user.txt",
		DocsResourcePath: "scim/create.md",
	},
	{OpUpdate, ProtocolSCIM}: {
		SystemPromptPath: "scim/update_system.txt",
		UserPromptPath:   "scim/update_user.txt",
		DocsResourcePath: "scim/update.md",
	},
	{OpDelete, ProtocolSCIM}: {
		SystemPromptPath: "scim/delete_system.txt",
		UserPromptPath:   "scim/delete_user.txt",
		DocsResourcePath: "scim/delete.md",
	},
}

// agnosticAssets covers operations that do not vary by protocol and are
// resolved by operation alone.
var agnosticAssets = map[OperationKind]Assets{
	OpRelation: {
		SystemPromptPath: "common/relation_system.txt",
		UserPromptPath:   "common/relation_user.txt",
		DocsResourcePath: "common/relation.md",
	},
	OpNativeSchema: {
		SystemPromptPath: "common/native_schema_system.txt",
		UserPromptPath:   "common/native_schema_user.txt",
		DocsResourcePath: "common/native_schema.md",
	},
	OpAttributeMapping: {
		SystemPromptPath: "common/attribute_mapping_system.txt",
		UserPromptPath:   "common/attribute_mapping_user.txt",
		DocsResourcePath: "common/attribute_mapping.md",
	},
}

// AssetTable resolves (operation, protocol) to prompt and docs assets.
type AssetTable struct {
	byProtocol map[assetKey]Assets
	byOp       map[OperationKind]Assets
}

// NewAssetTable builds the dispatch table and verifies it is exhaustive
// over every protocol-scoped pair and every protocol-agnostic operation.
// A gap is a configuration error and never recoverable.
func NewAssetTable() (*AssetTable, error) {
	for _, op := range protocolOperations {
		for _, proto := range protocols {
			if _, ok := protocolAssets[assetKey{op, proto}]; !ok {
				return nil, errors.NewConfigurationError(
					errors.ErrCodeAssetTableGap,
					fmt.Sprintf("asset table missing entry for %s/%s", op, proto),
				)
			}
		}
	}
	for _, op := range agnosticOperations {
		if _, ok := agnosticAssets[op]; !ok {
			return nil, errors.NewConfigurationError(
				errors.ErrCodeAssetTableGap,
				fmt.Sprintf("asset table missing entry for %s", op),
			)
		}
	}
	return &AssetTable{byProtocol: protocolAssets, byOp: agnosticAssets}, nil
}

// Resolve looks up the assets for one operation. Protocol-agnostic
// operations ignore the protocol argument; an unknown combination is a
// configuration error surfaced to the caller.
func (t *AssetTable) Resolve(op OperationKind, protocol Protocol) (Assets, error) {
	if assets, ok := t.byOp[op]; ok {
		return assets, nil
	}
	if assets, ok := t.byProtocol[assetKey{op, protocol}]; ok {
		return assets, nil
	}
	return Assets{}, errors.NewConfigurationError(
		errors.ErrCodeUnknownOperation,
		fmt.Sprintf("no assets for operation %q with protocol %q", op, protocol),
	)
}

// ParseOperation validates a raw operation name from job input.
func ParseOperation(raw string) (OperationKind, error) {
	op := OperationKind(raw)
	for _, known := range protocolOperations {
		if op == known {
			return op, nil
		}
	}
	for _, known := range agnosticOperations {
		if op == known {
			return op, nil
		}
	}
	return "", errors.NewConfigurationError(
		errors.ErrCodeUnknownOperation,
		fmt.Sprintf("unknown operation %q", raw),
	)
}

// ParseProtocol validates a raw protocol name from job input.
func ParseProtocol(raw string) (Protocol, error) {
	switch Protocol(raw) {
	case ProtocolREST, ProtocolSCIM:
		return Protocol(raw), nil
	}
	return "", errors.NewConfigurationError(
		errors.ErrCodeUnknownProtocol,
		fmt.Sprintf("unknown protocol %q", raw),
	)
}
