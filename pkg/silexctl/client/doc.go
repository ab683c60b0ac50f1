// Package client implements a thin HTTP client for the OpenSilex REST API,
// with services for experiments, variables, scientific objects, and data
// import. Request and response shapes are owned by the platform; this package
// only maps the envelope and pagination conventions.
package client
