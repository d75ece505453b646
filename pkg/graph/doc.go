// Package graph provides the snapshot wire format and the loader that turns
// a snapshot into the working copy the layout engine consumes.
//
// # Core Types
//
//   - [Snapshot]: one immutable graph as delivered by a data source
//   - [Node]: identity, display label, type, group and an opaque payload
//   - [Link]: undirected-for-physics relationship between two node ids
//   - [Loaded]: validated, shallow-cloned working copy with an id index
//   - [Layout]: node positions produced by a headless layout run
//
// # Wire Format
//
// Snapshots use the node-link JSON shape emitted by the site crawler backend:
//
//	{
//	  "nodes": [
//	    {"id": "https://x/login", "label": "login", "type": "page", "summary": "..."},
//	    {"id": "POST /api/login", "label": "login api", "type": "api"}
//	  ],
//	  "links": [
//	    {"id": "l1", "source": "https://x/login", "target": "POST /api/login", "value": 4}
//	  ]
//	}
//
// Fields other than id, label, type and group are kept verbatim in
// [Node.Payload] and written back out on marshal, so the detail panel sees
// exactly what the backend sent. A link without a value has value 1.
//
// # Validation
//
// [Load] and [Validate] reject a snapshot with a node that has no id, two
// nodes sharing an id, or a link whose source or target is not a node of the
// same snapshot. Failures carry codes from pkg/errors:
//
//	_, err := graph.Load(s)
//	if errors.Is(err, errors.ErrCodeDanglingLink) {
//	    // keep the previous graph
//	}
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
