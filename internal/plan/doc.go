// Package plan holds the project document model and the operations that
// mutate its phase and task trees.
//
// A project document (planner.json) looks like:
//
//	{
//	  "project": "Website relaunch",
//	  "last_update": "2026-10-18T09:30:00Z",
//	  "phases": {
//	    "design": {
//	      "name": "Design",
//	      "executed": false,
//	      "tasks": [
//	        {
//	          "id": "wireframes",
//	          "name": "Wireframes",
//	          "executed": false,
//	          "subtasks": [
//	            {
//	              "id": "wf-home",
//	              "name": "Home page",
//	              "executed": true,
//	              "parentId": "wireframes",
//	              "created_at": "2026-10-17T10:00:00Z",
//	              "updated_at": "2026-10-18T09:30:00Z"
//	            }
//	          ],
//	          "created_at": "2026-10-17T10:00:00Z",
//	          "updated_at": "2026-10-17T10:00:00Z"
//	        }
//	      ]
//	    }
//	  }
//	}
//
// # Ordering
//
// The phases object is ordered: the key order in the document is the display
// order, and PhaseList preserves it through decode and encode. Tasks and
// subtasks are ordered sequences.
//
// # Ownership
//
// Subtasks are stored inline in their parent's Subtasks slice, so the task
// forest is a tree by construction. ParentID is only a lookup key used when
// completion propagates from a subtask to its parent.
//
// # Completion
//
// Completion flags of parents and phases are derived. SetTaskStatus is the
// single path that changes a task's flag and then settles its immediate
// parent and the owning phase:
//
//   - completing a subtask completes its parent when every sibling is complete
//   - reopening a subtask reopens a completed parent
//   - a phase is complete when it has tasks and every top-level task is complete
//
// Propagation never reaches further than the immediate parent.
//
// # Timestamps
//
// All timestamps are RFC 3339 in UTC. Older documents that carry plain dates
// (2006-01-02 or 02/01/2006) still decode.
package plan
