package all

import (
	_ "github.com/sagan/naimeta/cmd/chunks"
	_ "github.com/sagan/naimeta/cmd/config"
	_ "github.com/sagan/naimeta/cmd/copy"
	_ "github.com/sagan/naimeta/cmd/diff"
	_ "github.com/sagan/naimeta/cmd/export"
	_ "github.com/sagan/naimeta/cmd/folder"
	_ "github.com/sagan/naimeta/cmd/image"
	_ "github.com/sagan/naimeta/cmd/importcmd"
	_ "github.com/sagan/naimeta/cmd/parse"
	_ "github.com/sagan/naimeta/cmd/paste"
	_ "github.com/sagan/naimeta/cmd/raw"
	_ "github.com/sagan/naimeta/cmd/schema"
	_ "github.com/sagan/naimeta/cmd/search"
	_ "github.com/sagan/naimeta/cmd/tags"
)
