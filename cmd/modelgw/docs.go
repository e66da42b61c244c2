package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           modelgw API
// @version         1.0
// @description     HTTP API for routing model requests across serving instances.
//
// @contact.name   modelgw maintainers
// @contact.url    https://github.com/your-org/modelgw
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
