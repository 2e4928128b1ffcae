/*
Package config loads user rule sets for formfix.

	            +-------------+
	            |   RuleSet   |
	            +------+------+
	                   |
	   +--------+------+------+--------+
	   |        |             |        |
	+--+--+  +--+---+     +---+--+  +--+---+
	| HCL |  | YAML |     | JSON |  | TOML |
	+-----+  +------+     +------+  +------+

🎯 Purpose:
- Reads a rule set file, picking the parser by extension
- Validates rule and check declarations
- Compiles declarations into rules and checklist items

🔄 Flow:
1. Load reads the file and finds a registered Parser
2. The parser decodes into RuleSet, rejecting unknown fields
3. Validate checks names, kinds and required attributes
4. Compile builds rule.Rule values and checklist.Item values

📝 HCL strings are templates: a regex replacement that references a capture
group is written "$${1}" so HCL leaves "${1}" in place. The evaluation context
exposes the process environment as env, e.g. env.FORM_DIR.

🔍 Example:

	rs, err := config.Load(ctx, "rules.hcl")
	if err != nil {
		return err
	}
	rules, items, err := rs.Compile()
*/
package config
