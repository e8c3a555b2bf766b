package navtree

import (
	"io"

	"github.com/foomo/navserver/nav"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type yamlNode struct {
	Title    string      `yaml:"title"`
	Target   string      `yaml:"target"`
	Children []*yamlNode `yaml:"children"`
}

type yamlTree struct {
	Name  string      `yaml:"name"`
	Nodes []*yamlNode `yaml:"nodes"`
}

// ParseYAML reads an outline written as
//
//	name: tutorials
//	nodes:
//	  - title: Basic Operations
//	    target: intro-01.html
//	    children:
//	      - title: Initial problem
//	        target: intro-01.html#autotoc_md168
//
// A top level sequence without name and nodes keys is accepted as well.
func ParseYAML(name string, r io.Reader) (*nav.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read navigation yaml")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse navigation yaml")
	}
	var yt yamlTree
	if len(doc.Content) > 0 && doc.Content[0].Kind == yaml.SequenceNode {
		err = doc.Content[0].Decode(&yt.Nodes)
	} else {
		err = yaml.Unmarshal(data, &yt)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode navigation yaml")
	}
	if yt.Name == "" {
		yt.Name = name
	}
	return nav.NewTree(yt.Name, fromYAML(yt.Nodes)...), nil
}

func fromYAML(nodes []*yamlNode) []*nav.Node {
	if len(nodes) == 0 {
		return nil
	}
	ret := make([]*nav.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		ret = append(ret, nav.NewNode(n.Title, n.Target, fromYAML(n.Children)...))
	}
	return ret
}
