package handler

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Route type
type Route string

const (
	// RouteGetTrees summaries of all loaded trees
	RouteGetTrees Route = "getTrees"
	// RouteGetTree a whole tree
	RouteGetTree Route = "getTree"
	// RouteGetNode a node by target
	RouteGetNode Route = "getNode"
	// RouteGetPath bread crumb of a target
	RouteGetPath Route = "getPath"
	// RouteGetChildren direct children of a target
	RouteGetChildren Route = "getChildren"
	// RouteSearch title search
	RouteSearch Route = "search"
	// RouteLint lint a loaded tree
	RouteLint Route = "lint"
	// RouteRender render a tree
	RouteRender Route = "render"
	// RouteUpdate update repo
	RouteUpdate Route = "update"
	// RouteGetRepo all trees at once
	RouteGetRepo Route = "getRepo"
)

const (
	sourceWebServer    = "webserver"
	sourceSocketServer = "socketserver"
)
