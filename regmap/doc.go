// Package regmap holds the semantic model of a chip's register address
// space and the pipeline that produces it.
//
// # Overview
//
// The model is a strict ownership tree:
//
//	AddressSpace
//	└── Peripheral        (absolute base address)
//	    ├── Register      (offset within peripheral)
//	    │   └── Field     (bit range within register)
//	    └── RegisterBlock (offset, may nest and replicate)
//	        └── Register ...
//
// Nodes are addressed by dotted qualified names
// (peripheral.block.register.field) through an index kept on the
// AddressSpace; the tree carries no back-pointers.
//
// The model is built once per generation run from the base
// register-description files, mutated in place by the overlay merger,
// and read-only thereafter. See the subpackages:
//
//   - regmap/loader: source discovery and decoding
//   - regmap/parser: dialect lexer and parser
//   - regmap/builder: AST to AddressSpace lowering
//   - regmap/overlay: extend/override/annotate merging
//   - regmap/validate: structural invariant checks
//   - regmap/emit: per-peripheral code generation
//   - regmap/output: deterministic artifact writing
//   - regmap/printer: text/JSON model dumps
//   - regmap/config: YAML generation config
//   - regmap/pipeline: whole-run orchestration
//
// # Diagnostics
//
// Every stage batch-collects its diagnostics into a Report rather than
// failing on the first problem, so a single run surfaces every defect
// across every input file. This is a contract, not an implementation
// detail: downstream tooling relies on fixing all reported issues in
// one edit pass.
package regmap
