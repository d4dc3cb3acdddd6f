package database

// Ensure concrete types implement the interfaces
var (
	_ TaskStore   = (*TaskRepository)(nil)
	_ TaskCounter = (*TaskRepository)(nil)
	_ TaskStore   = (*MemoryTaskStore)(nil)
	_ TaskCounter = (*MemoryTaskStore)(nil)
	_ Pinger      = (*MemoryTaskStore)(nil)
	_ Pinger      = (*DB)(nil)
)
