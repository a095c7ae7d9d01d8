package render

var (
	blockVertexSource = `
#version 330 core

in vec3 pos;
in vec4 color;
in vec3 normal;

uniform mat4 matrix;
uniform vec3 camera;
uniform float fogdis;
uniform vec3 lightdir;

out vec4 Color;
out float diffuse;
out float fog_factor;

void main() {
	gl_Position = matrix * vec4(pos, 1.0);
	Color = color;
	diffuse = max(0.0, dot(normal, normalize(lightdir)));
	float camera_distance = distance(camera, pos);
	fog_factor = pow(clamp(camera_distance / fogdis, 0.0, 1.0), 4.0);
}
`
	blockFragmentSource = `
#version 330 core

in vec4 Color;
in float diffuse;
in float fog_factor;

uniform vec3 skycolor;
uniform float ambient;

out vec4 frag_color;

void main() {
	vec3 color = Color.rgb * min(1.0, ambient + diffuse * (1.0 - ambient) * ambient);
	color = mix(color, skycolor, fog_factor);
	frag_color = vec4(color, Color.a);
}
`
	lineVertexSource = `
#version 330 core

in vec3 pos;

uniform mat4 matrix;

void main() {
	gl_Position = matrix * vec4(pos, 1.0);
}
`
	lineFragmentSource = `
#version 330 core

uniform vec4 linecolor;

out vec4 frag_color;

void main() {
	frag_color = linecolor;
}
`
	lightVertexSource = `
#version 330 core

in vec3 pos;
in vec4 color;
in vec3 normal;

uniform mat4 matrix;

out vec4 Color;

void main() {
	gl_Position = matrix * vec4(pos, 1.0);
	Color = vec4(color.rgb * (0.8 + 0.2 * abs(normal.y)), color.a);
}
`
	lightFragmentSource = `
#version 330 core

in vec4 Color;

out vec4 frag_color;

void main() {
	frag_color = Color;
}
`
)
