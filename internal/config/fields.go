package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	tagStr  = "!!str"
	tagInt  = "!!int"
	tagBool = "!!bool"
)

// fieldRule describes one top-level key of the configuration document.
type fieldRule struct {
	check    func(key string, n *yaml.Node) error
	err      error
	key      string
	required bool
}

var fieldRules = []fieldRule{
	{key: "seed_urls", required: true, err: ErrIncorrectSeedURL, check: checkSeedURLs},
	{key: "total_articles_to_find_and_parse", required: true, err: ErrIncorrectNumberOfArticles, check: intField(validateNumArticles, ErrIncorrectNumberOfArticles)},
	{key: "headers", required: true, err: ErrIncorrectHeaders, check: checkHeaders},
	{key: "encoding", required: true, err: ErrIncorrectEncoding, check: checkEncoding},
	{key: "timeout", required: true, err: ErrIncorrectTimeout, check: intField(validateTimeout, ErrIncorrectTimeout)},
	{key: "should_verify_certificate", required: true, err: ErrIncorrectVerify, check: boolField},
	{key: "headless_mode", required: true, err: ErrIncorrectVerify, check: boolField},
	{key: "workers", err: ErrIncorrectWorkers, check: intField(validateWorkers, ErrIncorrectWorkers)},
	{key: "request_delay_ms", err: ErrIncorrectRequestDelay, check: intField(validateRequestDelay, ErrIncorrectRequestDelay)},
	{key: "respect_robots_txt", err: ErrIncorrectVerify, check: boolField},
}

// checkFields walks fieldRules in order against the root mapping.
func checkFields(root *yaml.Node) error {
	values := make(map[string]*yaml.Node, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		values[root.Content[i].Value] = root.Content[i+1]
	}

	for _, rule := range fieldRules {
		n, ok := values[rule.key]
		if !ok {
			if rule.required {
				return fmt.Errorf("%w: %s is missing", rule.err, rule.key)
			}

			continue
		}

		if err := rule.check(rule.key, n); err != nil {
			return err
		}
	}

	return nil
}

func isScalar(n *yaml.Node, tag string) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == tag
}

func checkSeedURLs(key string, n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: %s must be a list", ErrIncorrectSeedURL, key)
	}

	seeds := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		if !isScalar(item, tagStr) {
			return fmt.Errorf("%w: %s[%d] is not a string", ErrIncorrectSeedURL, key, i)
		}

		seeds = append(seeds, item.Value)
	}

	return validateSeedURLs(seeds)
}

func checkHeaders(key string, n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s must be a mapping", ErrIncorrectHeaders, key)
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if !isScalar(k, tagStr) || !isScalar(v, tagStr) {
			return fmt.Errorf("%w: %s.%s is not a string pair", ErrIncorrectHeaders, key, k.Value)
		}
	}

	return nil
}

func checkEncoding(key string, n *yaml.Node) error {
	if !isScalar(n, tagStr) {
		return fmt.Errorf("%w: %s is not a string", ErrIncorrectEncoding, key)
	}

	return validateEncoding(n.Value)
}

func intField(validate func(int) error, typeErr error) func(string, *yaml.Node) error {
	return func(key string, n *yaml.Node) error {
		if !isScalar(n, tagInt) {
			return fmt.Errorf("%w: %s is not an integer", typeErr, key)
		}

		v, err := strconv.Atoi(n.Value)
		if err != nil {
			var decoded int
			if decodeErr := n.Decode(&decoded); decodeErr != nil {
				return fmt.Errorf("%w: %s: %w", typeErr, key, decodeErr)
			}

			v = decoded
		}

		return validate(v)
	}
}

func boolField(key string, n *yaml.Node) error {
	if !isScalar(n, tagBool) {
		return fmt.Errorf("%w: %s is not a boolean", ErrIncorrectVerify, key)
	}

	return nil
}
