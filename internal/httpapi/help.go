package httpapi

const helpHTML = `<!DOCTYPE html>
<html>
<head><title>arbor</title></head>
<body>
<h1>arbor</h1>
<p>A persisted tree of named nodes. Identifiers may not be empty or contain any of
<code>@_!#$%^&amp;*()&lt;&gt;?/\|}{~:</code>.</p>
<ul>
<li><code>POST /v1/reset</code> reset the tree to the sample data</li>
<li><code>POST /v1/nodes/&lt;parent&gt;/children/&lt;id&gt;</code> attach a new node under parent</li>
<li><code>PUT /v1/nodes/&lt;id&gt;/move/&lt;dest&gt;</code> move a node and its subtree under dest</li>
<li><code>GET /v1/nodes/&lt;id&gt;</code> node details</li>
<li><code>GET /v1/nodes/&lt;id&gt;/subtree</code> the subtree rooted at a node, pre-order</li>
<li><code>GET /v1/debug/layers?depth=n</code> node identifiers by distance from the root</li>
<li><code>GET /health</code> liveness and node count</li>
<li><code>GET /metrics</code> Prometheus metrics</li>
</ul>
</body>
</html>
`
