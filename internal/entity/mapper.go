package entity

// Mapper functions translate between raw stored documents and typed
// entities. Mapping is pure: defaults are filled in, dates are normalized,
// nothing touches the network.

// ToNote converts a raw note document to a typed Note.
func ToNote(doc Document) (*Note, error) {
	n := &Note{
		ID:           docString(doc, "id", ""),
		Title:        docString(doc, "title", ""),
		Content:      docString(doc, "content", ""),
		Category:     docString(doc, "category", CategoryGeneral),
		Status:       docString(doc, "status", StatusInProgress),
		LeetcodeLink: docString(doc, "leetcodeLink", ""),
		Locked:       docBool(doc, "locked"),
		ImageSizes:   docImageSizes(doc, "imageSizes"),
	}

	var err error
	if n.CreatedAt, err = dateField(doc, "createdAt"); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = optionalDateField(doc, "updatedAt"); err != nil {
		return nil, err
	}
	if n.CompletedAt, err = optionalDateField(doc, "completedAt"); err != nil {
		return nil, err
	}

	return n, nil
}

// NoteDoc converts a Note back to its stored document shape. Nullable
// fields are present only when set, matching what the original client
// wrote.
func NoteDoc(n *Note) Document {
	doc := Document{
		"title":    n.Title,
		"content":  n.Content,
		"category": n.Category,
		"status":   n.Status,
		"locked":   n.Locked,
	}
	if n.ID != "" {
		doc["id"] = n.ID
	}
	if n.LeetcodeLink != "" {
		doc["leetcodeLink"] = n.LeetcodeLink
	}
	if len(n.ImageSizes) > 0 {
		sizes := make(map[string]any, len(n.ImageSizes))
		for url, s := range n.ImageSizes {
			sizes[url] = map[string]any{"width": s.Width, "height": s.Height}
		}
		doc["imageSizes"] = sizes
	}
	if !n.CreatedAt.IsZero() {
		doc["createdAt"] = n.CreatedAt.UTC()
	}
	if n.UpdatedAt != nil {
		doc["updatedAt"] = n.UpdatedAt.UTC()
	}
	if n.CompletedAt != nil {
		doc["completedAt"] = n.CompletedAt.UTC()
	}
	return doc
}

// ToEvent converts a raw event document to a typed Event. End stays nil
// for open-ended events.
func ToEvent(doc Document) (*Event, error) {
	e := &Event{
		ID:       docString(doc, "id", ""),
		Title:    docString(doc, "title", ""),
		Priority: docString(doc, "priority", ""),
		Status:   docString(doc, "status", StatusPending),
		Category: docString(doc, "category", CategoryGeneral),
		AllDay:   docBool(doc, "allDay"),
	}

	var err error
	if e.Start, err = dateField(doc, "start"); err != nil {
		return nil, err
	}
	if e.End, err = optionalDateField(doc, "end"); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = dateField(doc, "createdAt"); err != nil {
		return nil, err
	}

	return e, nil
}

// EventDoc converts an Event back to its stored document shape.
func EventDoc(e *Event) Document {
	doc := Document{
		"title":    e.Title,
		"status":   e.Status,
		"category": e.Category,
		"allDay":   e.AllDay,
	}
	if e.ID != "" {
		doc["id"] = e.ID
	}
	if e.Priority != "" {
		doc["priority"] = e.Priority
	}
	if !e.Start.IsZero() {
		doc["start"] = e.Start.UTC()
	}
	if e.End != nil {
		doc["end"] = e.End.UTC()
	}
	if !e.CreatedAt.IsZero() {
		doc["createdAt"] = e.CreatedAt.UTC()
	}
	return doc
}

// ToTodo converts a raw todo document to a typed Todo, including its
// embedded tasks array.
func ToTodo(doc Document) (*Todo, error) {
	t := &Todo{
		ID:           docString(doc, "id", ""),
		Title:        docString(doc, "title", ""),
		Description:  docString(doc, "description", ""),
		Category:     docString(doc, "category", CategoryGeneral),
		Importance:   docString(doc, "importance", ImportanceMedium),
		LinkedNoteID: docString(doc, "linkedNoteId", ""),
		Completed:    docBool(doc, "completed"),
	}

	var err error
	if t.CreatedAt, err = dateField(doc, "createdAt"); err != nil {
		return nil, err
	}
	if t.DueDate, err = optionalDateField(doc, "dueDate"); err != nil {
		return nil, err
	}

	if raw, ok := doc["tasks"].([]any); ok {
		t.Tasks = make([]Task, 0, len(raw))
		for _, item := range raw {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			t.Tasks = append(t.Tasks, Task{
				ID:         docString(m, "id", ""),
				Title:      docString(m, "title", ""),
				Importance: docString(m, "importance", ImportanceMedium),
				Completed:  docBool(m, "completed"),
			})
		}
	}

	return t, nil
}

// TodoDoc converts a Todo back to its stored document shape. The tasks
// array is always written whole; task edits replace it atomically.
func TodoDoc(t *Todo) Document {
	tasks := make([]any, 0, len(t.Tasks))
	for _, task := range t.Tasks {
		tasks = append(tasks, map[string]any{
			"id":         task.ID,
			"title":      task.Title,
			"importance": task.Importance,
			"completed":  task.Completed,
		})
	}

	doc := Document{
		"title":       t.Title,
		"description": t.Description,
		"category":    t.Category,
		"importance":  t.Importance,
		"completed":   t.Completed,
		"tasks":       tasks,
	}
	if t.ID != "" {
		doc["id"] = t.ID
	}
	if t.LinkedNoteID != "" {
		doc["linkedNoteId"] = t.LinkedNoteID
	}
	if !t.CreatedAt.IsZero() {
		doc["createdAt"] = t.CreatedAt.UTC()
	}
	if t.DueDate != nil {
		doc["dueDate"] = t.DueDate.UTC()
	}
	return doc
}

func docString(doc map[string]any, key, def string) string {
	if s, ok := doc[key].(string); ok && s != "" {
		return s
	}
	return def
}

func docBool(doc map[string]any, key string) bool {
	b, _ := doc[key].(bool)
	return b
}

func docImageSizes(doc Document, key string) map[string]ImageSize {
	raw, ok := doc[key].(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	sizes := make(map[string]ImageSize, len(raw))
	for url, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		w, _ := numberField(m, "width")
		h, _ := numberField(m, "height")
		sizes[url] = ImageSize{Width: int(w), Height: int(h)}
	}
	return sizes
}
