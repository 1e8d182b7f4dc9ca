// Package docs 内嵌对外发布的API文档
package docs

import _ "embed"

// OpenAPISpec 对外发布的OpenAPI文档原文
//
//go:embed api/openapi.yaml
var OpenAPISpec []byte
