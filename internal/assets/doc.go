// Package assets provides the report stylesheet and the prompt sets used by
// the copilot.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in report style and default prompts
//	    ├── FilesystemLoader  - custom directory on disk
//	    └── AssetResolver     - custom-first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css     # report stylesheet
//	└── prompts/
//	    └── {name}.yaml    # QUERY_GENERATOR_PROMPT, NL_RESPONSE_GENERATOR, NL_BR_RESPONSE_GENERATOR
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
