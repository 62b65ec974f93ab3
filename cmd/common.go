/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/valpere/tablotran/internal/gateway"
)

// buildGateway constructs the inference backend from CLI parameters. Both
// backends are expected to run on this machine; the api key is only relevant
// for OpenAI-compatible servers that insist on one.
func buildGateway(name, baseURL, apiKey, model string) (gateway.Gateway, error) {
	switch name {
	case "ollama":
		return gateway.NewOllama(baseURL, model), nil
	case "openai":
		if model == "" {
			return nil, fmt.Errorf("--model is required for the openai gateway")
		}
		return gateway.NewOpenAI(baseURL, apiKey, model), nil
	}
	return nil, fmt.Errorf("unknown gateway: %s (supported: ollama, openai)", name)
}
