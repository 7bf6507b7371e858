package model

// FileOffset is the persisted checkpoint of one tailed file.
type FileOffset struct {
	Path      string `json:"path"`
	Inode     *int64 `json:"inode"`
	Offset    int64  `json:"offset"`
	UpdatedAt string `json:"updated_at"`
}

// Checkpoint is the part of a FileOffset the tail reader resumes from.
// A nil Inode means the file identity is unknown.
type Checkpoint struct {
	Offset int64
	Inode  *int64
}

func (o *FileOffset) Checkpoint() Checkpoint {
	if o == nil {
		return Checkpoint{}
	}
	return Checkpoint{Offset: o.Offset, Inode: o.Inode}
}
