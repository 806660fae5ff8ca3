package cache

// Keyer builds cache keys.
type Keyer interface {
	// TreeKey identifies a tree fetched from source.
	TreeKey(source string, opts TreeKeyOpts) string
	// SceneKey identifies a scene laid out from a tree with the given settings.
	SceneKey(treeHash string, settings any) string
	// ArtifactKey identifies a rendered output of a scene.
	ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string
}

// TreeKeyOpts are the fetch options that change the resulting tree.
type TreeKeyOpts struct {
	Format string `json:"format,omitempty"`
	Select string `json:"select,omitempty"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Labels bool    `json:"labels,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) TreeKey(source string, opts TreeKeyOpts) string {
	return hashKey("tree", source, opts)
}

func (DefaultKeyer) SceneKey(treeHash string, settings any) string {
	return hashKey("scene", treeHash, settings)
}

func (DefaultKeyer) ArtifactKey(sceneHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sceneHash, opts)
}
