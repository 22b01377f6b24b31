/*
Package semtok provides semantic token support for the bracket lens.

🎨 Semantic Tokens Overview:
---------------------------
Semantic tokens drive the highlighting layer: every bracket is colored by
its class, unmatched brackets are flagged, and the content runs between
brackets get a light string / number / plain styling.

Architecture:

	Snippet Text                  Display / LSP
	     |                              |
	     v                              v
	+-----------+    tokens     +-------------+
	| brackets  | ------------> |   semtok    |
	+-----------+               +-------------+
	                                  |
	                          +-------+--------+
	                          |                |
	                     Full Text       Range-based
	                      Tokens           Tokens
	                          |
	                          v
	                  LSP delta encoding

🔍 Token Types:

  - operator  (a bracket character)
  - string    (a content run holding a quote)
  - number    (a content run of digits only)
  - variable  (any other content run)

🏷 Token Modifiers:

  - unmatched (a bracket without a partner)

Example Usage:

	tokens := semtok.GetTokensForText(ctx, content)
	data := semtok.Encode(tokens, string(content))
	// send data in a textDocument/semanticTokens/full response
*/
package semtok
