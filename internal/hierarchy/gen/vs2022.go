package gen

import (
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/qobs-build/hiergen/internal/fsutil"
	"github.com/qobs-build/hiergen/internal/model"
)

//
// structures for .vcxproj
//

type VSProject struct {
	XMLName              xml.Name                `xml:"Project"`
	DefaultTargets       string                  `xml:"DefaultTargets,attr"`
	ToolsVersion         string                  `xml:"ToolsVersion,attr"`
	XMLNS                string                  `xml:"xmlns,attr"`
	ItemGroups           []VSItemGroup           `xml:"ItemGroup"`
	PropertyGroups       []VSPropertyGroup       `xml:"PropertyGroup"`
	ImportGroups         []VSImportGroup         `xml:"ImportGroup"`
	ItemDefinitionGroups []VSItemDefinitionGroup `xml:"ItemDefinitionGroup"`
	Imports              []VSImport              `xml:"Import"`
}

type VSItemGroup struct {
	Label                 string                   `xml:"Label,attr,omitempty"`
	ProjectConfigurations []VSProjectConfiguration `xml:"ProjectConfiguration,omitempty"`
	ClCompiles            []VSInclude              `xml:"ClCompile,omitempty"`
	ClIncludes            []VSInclude              `xml:"ClInclude,omitempty"`
	ProjectReferences     []VSProjectReference     `xml:"ProjectReference,omitempty"`
}

type VSProjectConfiguration struct {
	Include       string `xml:"Include,attr"`
	Configuration string `xml:"Configuration"`
	Platform      string `xml:"Platform"`
}

type VSInclude struct {
	Include string `xml:"Include,attr"`
}

type VSProjectReference struct {
	Include                 string `xml:"Include,attr"`
	Project                 string `xml:"Project"`
	Name                    string `xml:"Name"`
	LinkLibraryDependencies bool   `xml:"LinkLibraryDependencies"`
}

type VSPropertyGroup struct {
	Label                        string `xml:"Label,attr,omitempty"`
	Condition                    string `xml:"Condition,attr,omitempty"`
	ProjectGuid                  string `xml:"ProjectGuid,omitempty"`
	Keyword                      string `xml:"Keyword,omitempty"`
	WindowsTargetPlatformVersion string `xml:"WindowsTargetPlatformVersion,omitempty"`
	ProjectName                  string `xml:"ProjectName,omitempty"`
	ConfigurationType            string `xml:"ConfigurationType,omitempty"`
	PlatformToolset              string `xml:"PlatformToolset,omitempty"`
	CharacterSet                 string `xml:"CharacterSet,omitempty"`
	UseDebugLibraries            *bool  `xml:"UseDebugLibraries,omitempty"`
	WholeProgramOptimization     *bool  `xml:"WholeProgramOptimization,omitempty"`
}

type VSImportGroup struct {
	Label   string     `xml:"Label,attr,omitempty"`
	Imports []VSImport `xml:"Import"`
}

type VSImport struct {
	Project string `xml:"Project,attr"`
}

type VSItemDefinitionGroup struct {
	Condition string          `xml:"Condition,attr"`
	ClCompile VSCppCompileDef `xml:"ClCompile"`
	Link      *VSLinkDef      `xml:"Link,omitempty"`
}

type VSCppCompileDef struct {
	WarningLevel                 string `xml:"WarningLevel"`
	AdditionalIncludeDirectories string `xml:"AdditionalIncludeDirectories"`
	LanguageStandardC            string `xml:"LanguageStandard_C,omitempty"`
	Optimization                 string `xml:"Optimization"`
}

type VSLinkDef struct {
	SubSystem              string `xml:"SubSystem"`
	AdditionalDependencies string `xml:"AdditionalDependencies"`
}

//
// generator
//

const (
	vsRootTraversal = "dirs.proj"
	vsTraversalSdk  = "Microsoft.Build.Traversal/4.1.0"
	vsToolsVersion  = "17.0"
	vsXMLNS         = "http://schemas.microsoft.com/developer/msbuild/2003"
	// Windows (Visual C++) https://github.com/VISTALL/visual-studio-project-type-guids
	vsCppProjectType = "8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942"
)

// vsNamespace seeds the name-based project GUIDs so the output is reproducible
var vsNamespace = uuid.MustParse("6f1b4a52-2f0c-4c1e-9a57-1f3d3c0b9e11")

type vsEntry struct {
	name  string
	path  string // absolute .vcxproj path
	guid  string
	isLib bool
}

// VS2022Gen writes a .vcxproj per library and application, aggregates every
// directory with a Microsoft.Build.Traversal project and lists all projects
// in <project>.sln once the hierarchy is complete.
type VS2022Gen struct {
	project  Project
	root     string
	projects []vsEntry
}

func NewVS2022Gen(p Project) *VS2022Gen {
	return &VS2022Gen{project: p, projects: []vsEntry{}}
}

func (g *VS2022Gen) guid(name string) string {
	return strings.ToUpper(uuid.NewSHA1(vsNamespace, []byte(g.project.Name+"/"+name)).String())
}

func winPath(p string) string { return strings.ReplaceAll(p, "/", `\`) }

func xmlAttr(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func traversalEntry(include string) string {
	return `    <ProjectReference Include="` + xmlAttr(winPath(include)) + `" />` + "\n"
}

const (
	traversalHeader = `<Project Sdk="` + vsTraversalSdk + `">` + "\n" + "  <ItemGroup>\n"
	traversalFooter = "  </ItemGroup>\n</Project>\n"
)

func vsProjectFile(name string) string { return name + ".vcxproj" }

// traversalFile is the aggregator of dir, e.g. libs/libs.proj
func traversalFile(dir string) string {
	return filepath.Join(dir, filepath.Base(dir)+".proj")
}

func (g *VS2022Gen) BeginRoot(root, appsPath, libsPath string) error {
	g.root = root

	var sb strings.Builder
	write(&sb, traversalHeader)
	write(&sb, traversalEntry(relPath(root, traversalFile(libsPath))))
	write(&sb, traversalEntry(relPath(root, traversalFile(appsPath))))
	write(&sb, traversalFooter)

	return fsutil.WriteFile(filepath.Join(root, vsRootTraversal), sb.String())
}

func (g *VS2022Gen) BeginLibraries(libsPath string) (*Aggregator, error) {
	return openAggregator(traversalFile(libsPath), traversalHeader, traversalFooter, func(name string) string {
		return traversalEntry(name + "/" + vsProjectFile(name))
	})
}

func (g *VS2022Gen) BeginApplications(appsPath string) (*Aggregator, error) {
	return openAggregator(traversalFile(appsPath), traversalHeader, traversalFooter, func(name string) string {
		return traversalEntry(name + "/" + vsProjectFile(name))
	})
}

func (g *VS2022Gen) AddLibrary(agg *Aggregator, lib *model.Library) error {
	entry := vsEntry{
		name:  lib.Name(),
		path:  filepath.Join(lib.Path(), vsProjectFile(lib.Name())),
		guid:  g.guid(lib.Name()),
		isLib: true,
	}

	sources := []VSInclude{{Include: winPath(relPath(lib.Path(), lib.SourcePath()))}}
	headers := []VSInclude{{Include: winPath(relPath(lib.Path(), lib.HeaderPath()))}}
	project := g.createProject(entry, sources, headers, nil, []string{"include"})

	if err := g.writeProject(entry.path, project); err != nil {
		return err
	}
	g.record(entry)
	return agg.Add(entry.name)
}

func (g *VS2022Gen) AddApplication(agg *Aggregator, app *model.Application) error {
	entry := vsEntry{
		name: app.Name(),
		path: filepath.Join(app.Path(), vsProjectFile(app.Name())),
		guid: g.guid(app.Name()),
	}

	refs := make([]VSProjectReference, 0, len(app.Libraries()))
	includeDirs := make([]string, 0, len(app.Libraries()))
	for _, lib := range app.Libraries() {
		libProject := filepath.Join(lib.Path(), vsProjectFile(lib.Name()))
		refs = append(refs, VSProjectReference{
			Include:                 winPath(relPath(app.Path(), libProject)),
			Project:                 "{" + g.guid(lib.Name()) + "}",
			Name:                    lib.Name(),
			LinkLibraryDependencies: true,
		})
		includeDirs = append(includeDirs, winPath(relPath(app.Path(), filepath.Dir(lib.HeaderPath()))))
	}

	sources := []VSInclude{{Include: winPath(app.MainSource())}}
	project := g.createProject(entry, sources, nil, refs, includeDirs)

	if err := g.writeProject(entry.path, project); err != nil {
		return err
	}
	g.record(entry)
	return agg.Add(entry.name)
}

func (g *VS2022Gen) record(e vsEntry) {
	g.projects = append(g.projects, e)
}

func (g *VS2022Gen) writeProject(path string, project VSProject) error {
	return fsutil.Render(path, func(w io.Writer) error {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return err
		}
		enc := xml.NewEncoder(w)
		enc.Indent("", "  ")
		if err := enc.Encode(project); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	})
}

var vsConfigurations = []struct{ name, optimization string }{
	{"Debug", "Disabled"},
	{"Release", "MaxSpeed"},
}

func vsCondition(config string) string {
	return "'$(Configuration)|$(Platform)'=='" + config + "|x64'"
}

func vsLanguageStandard(std string) string {
	// MSVC only knows C11 and C17; older standards use the compiler default
	switch strings.TrimLeft(std, "cgnu") {
	case "11":
		return "stdc11"
	case "17", "18":
		return "stdc17"
	}
	return ""
}

func (g *VS2022Gen) createProject(e vsEntry, sources, headers []VSInclude, refs []VSProjectReference, includeDirs []string) VSProject {
	configType := "Application"
	if e.isLib {
		configType = "StaticLibrary"
	}
	trueVal, falseVal := true, false

	configs := VSItemGroup{Label: "ProjectConfigurations"}
	for _, c := range vsConfigurations {
		configs.ProjectConfigurations = append(configs.ProjectConfigurations, VSProjectConfiguration{
			Include: c.name + "|x64", Configuration: c.name, Platform: "x64",
		})
	}

	itemGroups := []VSItemGroup{configs, {ClCompiles: sources}}
	if len(headers) > 0 {
		itemGroups = append(itemGroups, VSItemGroup{ClIncludes: headers})
	}
	if len(refs) > 0 {
		itemGroups = append(itemGroups, VSItemGroup{ProjectReferences: refs})
	}

	propertyGroups := []VSPropertyGroup{{
		Label:                        "Globals",
		ProjectGuid:                  "{" + e.guid + "}",
		Keyword:                      "Win32Proj",
		WindowsTargetPlatformVersion: "10.0",
		ProjectName:                  e.name,
	}}
	var defs []VSItemDefinitionGroup
	for _, c := range vsConfigurations {
		debug := c.name == "Debug"
		pg := VSPropertyGroup{
			Condition:         vsCondition(c.name),
			Label:             "Configuration",
			ConfigurationType: configType,
			PlatformToolset:   "v143",
			CharacterSet:      "Unicode",
			UseDebugLibraries: &falseVal,
		}
		if debug {
			pg.UseDebugLibraries = &trueVal
		} else {
			pg.WholeProgramOptimization = &trueVal
		}
		propertyGroups = append(propertyGroups, pg)

		def := VSItemDefinitionGroup{
			Condition: vsCondition(c.name),
			ClCompile: VSCppCompileDef{
				WarningLevel:                 "Level3",
				AdditionalIncludeDirectories: strings.Join(slices.Concat(includeDirs, []string{"%(AdditionalIncludeDirectories)"}), ";"),
				LanguageStandardC:            vsLanguageStandard(g.project.Std),
				Optimization:                 c.optimization,
			},
		}
		if !e.isLib {
			def.Link = &VSLinkDef{SubSystem: "Console", AdditionalDependencies: "%(AdditionalDependencies)"}
		}
		defs = append(defs, def)
	}

	return VSProject{
		DefaultTargets: "Build",
		ToolsVersion:   vsToolsVersion,
		XMLNS:          vsXMLNS,
		ItemGroups:     itemGroups,
		PropertyGroups: propertyGroups,
		ImportGroups: []VSImportGroup{{
			Label: "PropertySheets",
			Imports: []VSImport{
				{Project: `$(VCTargetsPath)\Microsoft.Cpp.Default.props`},
				{Project: `$(VCTargetsPath)\Microsoft.Cpp.props`},
			},
		}},
		ItemDefinitionGroups: defs,
		Imports:              []VSImport{{Project: `$(VCTargetsPath)\Microsoft.Cpp.targets`}},
	}
}

// EndRoot writes the solution listing every project in the order it was added.
func (g *VS2022Gen) EndRoot() error {
	var sb strings.Builder

	writeln(&sb, "Microsoft Visual Studio Solution File, Format Version 12.00")
	writeln(&sb, "# Visual Studio Version 17")
	for _, p := range g.projects {
		writeln(&sb,
			`Project("{`, vsCppProjectType, `}") = "`, p.name, `", "`, winPath(relPath(g.root, p.path)), `", "{`, p.guid, `}"`,
		)
		writeln(&sb, "EndProject")
	}
	writeln(&sb, "Global")
	writeln(&sb, "\tGlobalSection(SolutionConfigurationPlatforms) = preSolution")
	for _, c := range vsConfigurations {
		writeln(&sb, "\t\t", c.name, "|x64 = ", c.name, "|x64")
	}
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(ProjectConfigurationPlatforms) = postSolution")
	for _, p := range g.projects {
		for _, c := range vsConfigurations {
			writeln(&sb, "\t\t{", p.guid, "}.", c.name, "|x64.ActiveCfg = ", c.name, "|x64")
			writeln(&sb, "\t\t{", p.guid, "}.", c.name, "|x64.Build.0 = ", c.name, "|x64")
		}
	}
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(SolutionProperties) = preSolution")
	writeln(&sb, "\t\tHideSolutionNode = FALSE")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "\tGlobalSection(ExtensibilityGlobals) = postSolution")
	writeln(&sb, "\t\tSolutionGuid = {", g.guid(g.project.Name+".sln"), "}")
	writeln(&sb, "\tEndGlobalSection")
	writeln(&sb, "EndGlobal")

	return fsutil.WriteFile(filepath.Join(g.root, g.project.Name+".sln"), sb.String())
}
