package gen

import (
	"path/filepath"
	"strings"

	"github.com/qobs-build/hiergen/internal/fsutil"
	"github.com/qobs-build/hiergen/internal/model"
)

const (
	creatorBuildFile   = ".creator"
	creatorAppTemplate = "template.app"
	creatorLibTemplate = "template.lib"
)

// CreatorGen writes units for the Creator build tool: every directory holds a
// .creator unit and the root carries the two templates the units extend.
type CreatorGen struct {
	project Project
}

func creatorUnitName(name string) string {
	return "# @creator.unit.name = " + name + "\n"
}

const creatorAppTemplateBody = `load('platform', 'p')
load('compiler', 'c')

define('Sources', '$(wildcard $ProjectPath/src/*.c)')
define('Objects', '$(p:obj $(move $Sources, $ProjectPath/src, $BuildDir/obj/$self))')
define('Includes', '$ProjectPath/include')
define('Libs', '')
define('Bin', '$(p:bin $BuildDir/bin/${self}.)')

@target(abstract=True)
def obj():
  obj.build_each('$Sources', '$Objects',
    'ccache $c:cc $c:compileonly $(c:include $Includes) $CFlags $"< $(c:objout $@)')

@target(abstract=True)
def bin():
  bin.build('$Objects', '$Bin', 'ccache $c:cc $CFlags $!< $!Libs $(c:binout $@)')
`

const creatorLibTemplateBody = `load('platform', 'p')
load('compiler', 'c')

if not defined('BuildDir'):
  raise EnvironmentError('BuildDir is not defined')

define('Includes', '$ProjectPath/include')
define('Sources', '$(wildcard $ProjectPath/src/*.c)')
define('Objects', '$(p:obj $(move $Sources, $ProjectPath/src, $BuildDir/obj/$self))')
define('Lib', '$(p:lib $BuildDir/libs/$self)')

@target(abstract=True)
def obj():
  obj.build_each('$Sources', '$Objects', 'ccache $c:cc $c:compileonly $CFlags $(c:include $Includes) $(c:objout $@) $"<')

@target(obj, abstract=True)
def lib():
  lib.build('$Objects', '$Lib', 'ccache $(c:ar $@) $!<')
`

func (g *CreatorGen) BeginRoot(root, appsPath, libsPath string) error {
	apps := relPath(root, appsPath)
	libs := relPath(root, libsPath)

	var sb strings.Builder
	write(&sb, creatorUnitName(g.project.Name))
	writeln(&sb)
	writeln(&sb, "define(':CFlags', ", pyQuote(" -std="+g.project.Std), ")")
	writeln(&sb, "define(':BuildDir', '$ProjectPath/build')")
	writeln(&sb)
	writeln(&sb, "workspace.path.append(e(", pyQuote("$ProjectPath/"+apps), "))")
	writeln(&sb, "workspace.path.append(e(", pyQuote("$ProjectPath/"+libs), "))")
	writeln(&sb)
	writeln(&sb, "load(", pyQuote(filepath.Base(appsPath)), ")")
	writeln(&sb, "load(", pyQuote(filepath.Base(libsPath)), ")")

	if err := fsutil.WriteFile(filepath.Join(root, creatorBuildFile), sb.String()); err != nil {
		return err
	}

	templates := []struct{ name, body string }{
		{creatorAppTemplate, creatorAppTemplateBody},
		{creatorLibTemplate, creatorLibTemplateBody},
	}
	for _, tmpl := range templates {
		path := filepath.Join(root, tmpl.name+creatorBuildFile)
		if err := fsutil.WriteFile(path, creatorUnitName(tmpl.name)+"\n"+tmpl.body); err != nil {
			return err
		}
	}
	return nil
}

func (g *CreatorGen) EndRoot() error { return nil }

func creatorLoad(name string) string {
	return "load(" + pyQuote(name) + ")\n"
}

func (g *CreatorGen) BeginLibraries(libsPath string) (*Aggregator, error) {
	header := creatorUnitName(filepath.Base(libsPath))
	return openAggregator(filepath.Join(libsPath, creatorBuildFile), header, "", creatorLoad)
}

func (g *CreatorGen) BeginApplications(appsPath string) (*Aggregator, error) {
	header := creatorUnitName(filepath.Base(appsPath))
	return openAggregator(filepath.Join(appsPath, creatorBuildFile), header, "", creatorLoad)
}

// AddLibrary writes a unit extending template.lib; its "<name>:lib" target and
// $<name>:Lib / $<name>:Includes variables are the handles consumers use.
func (g *CreatorGen) AddLibrary(agg *Aggregator, lib *model.Library) error {
	var sb strings.Builder
	name := lib.Name()

	write(&sb, creatorUnitName(name))
	writeln(&sb, "extends(", pyQuote(creatorLibTemplate), ")")

	if err := fsutil.WriteFile(filepath.Join(lib.Path(), creatorBuildFile), sb.String()); err != nil {
		return err
	}
	return agg.Add(name)
}

func (g *CreatorGen) AddApplication(agg *Aggregator, app *model.Application) error {
	var sb strings.Builder
	name := app.Name()

	write(&sb, creatorUnitName(name))
	writeln(&sb, "extends(", pyQuote(creatorAppTemplate), ")")

	var libs, includes strings.Builder
	requires := make([]string, 0, len(app.Libraries()))
	for _, lib := range app.Libraries() {
		write(&sb, creatorLoad(lib.Name()))
		write(&libs, ";$", lib.Name(), ":Lib")
		write(&includes, ";$", lib.Name(), ":Includes")
		requires = append(requires, lib.Name()+":lib")
	}
	writeln(&sb, "append('Libs', ", pyQuote(libs.String()), ")")
	writeln(&sb, "append('Includes', ", pyQuote(includes.String()), ")")
	writeln(&sb, "[obj.requires(x) for x in ", pyList(requires), "]")

	if err := fsutil.WriteFile(filepath.Join(app.Path(), creatorBuildFile), sb.String()); err != nil {
		return err
	}
	return agg.Add(name)
}
