package constant

// ResolveFn is the global function a user resolver script must define.
const ResolveFn = "Resolve"

// ResolverTemplate scaffolds a new Lua resolver script.
const ResolverTemplate = `-- @name    {{ .Name }}
-- @author  {{ .Author }}

--- Rewrites a chapter link into a directly playable one.
-- Return nil (or the input) to leave the link untouched.
-- @param url string Raw chapter URL
-- @return string|nil
function {{ .Fn }}(url)
	return nil
end
`
